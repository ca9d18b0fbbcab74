package set

// Set formalizes set semantics for a map of comparable values.
// Iteration order is not defined, use [Ordered] if that matters.
type Set[T comparable] map[T]struct{}

// New creates a new [Set] from the given values.
// The returned [Set] will have no values if none are given.
func New[T comparable](vals ...T) Set[T] {
	s := Set[T]{}
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Add(val T, others ...T) Set[T] {
	if s == nil {
		s = Set[T]{}
	}
	s[val] = struct{}{}
	for _, v := range others {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

// Ordered is a [Set] that remembers the order values were first added in.
// Re-adding a value that's already present does not move it.
//
// The zero value is ready to use. An Ordered is not safe for concurrent use.
type Ordered[T comparable] struct {
	index Set[T]
	vals  []T
}

// NewOrdered creates an [Ordered] set with the given values, in order.
func NewOrdered[T comparable](vals ...T) *Ordered[T] {
	o := new(Ordered[T])
	for _, v := range vals {
		o.Add(v)
	}
	return o
}

// Add appends val to the set if it's not present, and reports whether it was added.
func (o *Ordered[T]) Add(val T) bool {
	if o.index.Has(val) {
		return false
	}
	o.index = o.index.Add(val)
	o.vals = append(o.vals, val)
	return true
}

// Remove deletes val from the set, and reports whether it was present.
func (o *Ordered[T]) Remove(val T) bool {
	if !o.index.Has(val) {
		return false
	}
	delete(o.index, val)
	for i, v := range o.vals {
		if v == val {
			o.vals = append(o.vals[:i], o.vals[i+1:]...)
			break
		}
	}
	return true
}

func (o *Ordered[T]) Has(val T) bool {
	return o.index.Has(val)
}

func (o *Ordered[T]) Len() int {
	return len(o.vals)
}

// Values returns a copy of the values in insertion order.
// The copy may be iterated while the set is being modified.
func (o *Ordered[T]) Values() []T {
	if len(o.vals) == 0 {
		return nil
	}
	vals := make([]T, len(o.vals))
	copy(vals, o.vals)
	return vals
}

// Clear empties the set and returns the values that were removed, in insertion order.
func (o *Ordered[T]) Clear() []T {
	removed := o.vals
	o.vals = nil
	o.index = nil
	return removed
}
