package channel

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestArena_StaleTokens(t *testing.T) {
	var a arena[string]
	first := a.alloc(entry[string]{kind: kindListener, key: "a"})
	assert.False(t, first.IsZero())
	e, ok := a.get(first)
	assert.True(t, ok)
	assert.Equal(t, "a", e.key)

	assert.True(t, a.release(first))
	assert.False(t, a.release(first), "Double release should do nothing")
	_, ok = a.get(first)
	assert.False(t, ok)

	// The slot is reused, but the old token must not see the new entry.
	second := a.alloc(entry[string]{kind: kindCall, key: "b"})
	assert.Equal(t, first.slot, second.slot)
	assert.NotEqual(t, first, second)
	_, ok = a.get(first)
	assert.False(t, ok)
	e, ok = a.get(second)
	assert.True(t, ok)
	assert.Equal(t, "b", e.key)
}

func TestArena_ZeroToken(t *testing.T) {
	var a arena[string]
	a.alloc(entry[string]{kind: kindListener})
	_, ok := a.get(Token{})
	assert.False(t, ok)
	_, ok = a.get(Token{slot: 40, gen: 1})
	assert.False(t, ok)
	assert.Equal(t, "token(none)", Token{}.String())
}
