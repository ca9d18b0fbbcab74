package channel

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestToggle(t *testing.T) {
	assert.True(t, Unset.Or(true))
	assert.False(t, Unset.Or(false))
	assert.True(t, On.Or(false))
	assert.False(t, Off.Or(true))
	assert.Equal(t, On, ToggleOf(true))
	assert.Equal(t, Off, ToggleOf(false))
	assert.False(t, Unset.IsSet())
	assert.Equal(t, "on", On.String())
	assert.Equal(t, "Toggle(7)", Toggle(7).String())
}

func TestOptions_Merge(t *testing.T) {
	base := Options{ReplayCache: Off, ReplayOnce: On}
	merged := base.Merge(Options{ReplayOnce: Off, ExclusiveListen: On})
	assert.Equal(t, Options{ReplayCache: Off, ReplayOnce: Off, ExclusiveListen: On}, merged)
	assert.Equal(t, Options{ReplayCache: Off, ReplayOnce: On}, base, "Merge shouldn't modify the receiver")
}

func TestResolve_Defaults(t *testing.T) {
	assert.Equal(t, Resolved{ReplayCache: true}, Resolve(Options{}, Options{}))
}

func TestResolve_Precedence(t *testing.T) {
	ch := newTestChannel(t,
		WithOptions[string](Options{ReplayCache: On}),
		WithKeyOption(testEvent, Options{ReplayCache: Off}),
	)
	assert.False(t, ch.Resolved(testEvent).ReplayCache)
	assert.True(t, ch.Resolved(otherEvent).ReplayCache)
}

func TestResolve_FlagsIndependent(t *testing.T) {
	ch := newTestChannel(t,
		WithOptions[string](Options{ExclusiveListen: On, ReplayCache: Off}),
		WithKeyOptions(map[string]Options{
			testEvent: {ReplayOnce: On, ReplayCache: On},
		}),
	)
	assert.Equal(t, Resolved{ReplayCache: true, ReplayOnce: true, ExclusiveListen: true}, ch.Resolved(testEvent))
	assert.Equal(t, Resolved{ReplayCache: false, ReplayOnce: false, ExclusiveListen: true}, ch.Resolved(otherEvent))
}

func TestWithKeyOptions_Copied(t *testing.T) {
	table := map[string]Options{testEvent: {ReplayCache: Off}}
	ch := newTestChannel(t, WithKeyOptions(table))
	table[testEvent] = Options{ReplayCache: On}
	assert.False(t, ch.Resolved(testEvent).ReplayCache)
}

func TestConfig_Invalid(t *testing.T) {
	_, err := New[string](WithOptions[string](Options{ReplayCache: Toggle(9)}))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(WithKeyOption(testEvent, Options{ReplayOnce: Toggle(-1)}))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New[string](WithLogger[string](nil))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
