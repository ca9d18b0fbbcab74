package set

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSet_Add(t *testing.T) {
	var s Set[string]
	s = s.Add("a", "b")
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("c"))
	assert.Len(t, New(1, 2, 2, 3), 3)
}

func TestOrdered_InsertionOrder(t *testing.T) {
	o := NewOrdered("c", "a", "b")
	assert.False(t, o.Add("a"), "Duplicate shouldn't be added")
	assert.True(t, o.Add("d"))
	assert.Equal(t, []string{"c", "a", "b", "d"}, o.Values())
	assert.Equal(t, 4, o.Len())
}

func TestOrdered_Remove(t *testing.T) {
	o := NewOrdered(1, 2, 3)
	assert.True(t, o.Remove(2))
	assert.False(t, o.Remove(2))
	assert.False(t, o.Has(2))
	assert.Equal(t, []int{1, 3}, o.Values())

	// Re-adding goes to the back.
	o.Add(2)
	assert.Equal(t, []int{1, 3, 2}, o.Values())
}

func TestOrdered_ValuesIsCopy(t *testing.T) {
	o := NewOrdered(1, 2, 3)
	vals := o.Values()
	o.Remove(1)
	assert.Equal(t, []int{1, 2, 3}, vals)
}

func TestOrdered_Clear(t *testing.T) {
	var o Ordered[int]
	assert.Nil(t, o.Values())
	o.Add(1)
	o.Add(2)
	assert.Equal(t, []int{1, 2}, o.Clear())
	assert.Equal(t, 0, o.Len())
	assert.False(t, o.Has(1))
	assert.True(t, o.Add(1), "Should be usable after Clear")
}
