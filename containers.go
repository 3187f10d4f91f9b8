package typefence

import "reflect"

// Map is the insertion-ordered mapping produced by map coercion. Keys are
// unique; setting an existing key replaces its value in place, so the first
// occurrence fixes the position (last value wins).
//
// Lookup is constant-time for comparable keys and falls back to a linear
// reflect.DeepEqual scan otherwise.
type Map struct {
	keys  []any
	vals  []any
	index map[any]int // comparable keys only
}

// NewMap returns an empty ordered mapping.
func NewMap() *Map { return &Map{index: map[any]int{}} }

// Set stores v under k, replacing any previous value for an equal key.
func (m *Map) Set(k, v any) {
	if i, ok := m.find(k); ok {
		m.vals[i] = v
		return
	}
	if nk, ok := normalizeKey(k); ok {
		m.index[nk] = len(m.keys)
	}
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	i, ok := m.find(k)
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any { return append([]any(nil), m.keys...) }

// Values returns the values in insertion order.
func (m *Map) Values() []any { return append([]any(nil), m.vals...) }

// Range calls f for each entry in insertion order until f returns false.
func (m *Map) Range(f func(k, v any) bool) {
	for i := range m.keys {
		if !f(m.keys[i], m.vals[i]) {
			return
		}
	}
}

func (m *Map) String() string { return Render(m) }

func (m *Map) find(k any) (int, bool) {
	if nk, ok := normalizeKey(k); ok {
		i, found := m.index[nk]
		return i, found
	}
	for i := range m.keys {
		if reflect.DeepEqual(m.keys[i], k) {
			return i, true
		}
	}
	return 0, false
}

// Set is the unique-element container produced by set coercion. Iteration
// order is the insertion order of each element's first occurrence, which
// keeps coercion output deterministic.
type Set struct {
	elems []any
	index map[any]struct{} // comparable elements only
}

// NewSet returns an empty set.
func NewSet() *Set { return &Set{index: map[any]struct{}{}} }

// Add inserts v unless an equal element is already present.
func (s *Set) Add(v any) {
	if s.Contains(v) {
		return
	}
	if nv, ok := normalizeKey(v); ok {
		s.index[nv] = struct{}{}
	}
	s.elems = append(s.elems, v)
}

// Contains reports whether an element equal to v is present.
func (s *Set) Contains(v any) bool {
	if nv, ok := normalizeKey(v); ok {
		_, found := s.index[nv]
		return found
	}
	for i := range s.elems {
		if reflect.DeepEqual(s.elems[i], v) {
			return true
		}
	}
	return false
}

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Elems returns the elements in first-occurrence order.
func (s *Set) Elems() []any { return append([]any(nil), s.elems...) }

// Range calls f for each element until f returns false.
func (s *Set) Range(f func(v any) bool) {
	for i := range s.elems {
		if !f(s.elems[i]) {
			return
		}
	}
}

func (s *Set) String() string { return Render(s) }

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// normalizeKey folds numeric and string kinds to a canonical representation
// so that int(1) and int64(1) index to the same slot. The second result is
// false for values that cannot be used as a map key at all.
func normalizeKey(v any) (any, bool) {
	if n, ok := intValue(v); ok {
		return n, true
	}
	if f, ok := floatValue(v); ok {
		return f, true
	}
	if s, ok := stringValue(v); ok {
		return s, true
	}
	if isComparable(v) {
		return v, true
	}
	return nil, false
}
