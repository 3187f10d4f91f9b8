package typefence_test

import (
	"reflect"
	"testing"

	typefence "github.com/reoring/typefence"
)

func TestMapInsertionOrder(t *testing.T) {
	m := typefence.NewMap()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)
	if !reflect.DeepEqual(m.Keys(), []any{"c", "a", "b"}) {
		t.Fatalf("keys must keep insertion order, got %v", m.Keys())
	}
	if !reflect.DeepEqual(m.Values(), []any{3, 1, 2}) {
		t.Fatalf("values must keep insertion order, got %v", m.Values())
	}
}

func TestMapSetReplacesInPlace(t *testing.T) {
	m := typefence.NewMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 9)
	if m.Len() != 2 {
		t.Fatalf("replacement must not grow the map, got len %d", m.Len())
	}
	if !reflect.DeepEqual(m.Keys(), []any{"a", "b"}) {
		t.Fatalf("first occurrence fixes the position, got %v", m.Keys())
	}
	if v, _ := m.Get("a"); v != 9 {
		t.Fatalf("want a=9, got %v", v)
	}
}

func TestMapCrossKindLookup(t *testing.T) {
	m := typefence.NewMap()
	m.Set(int64(1), "one")
	if v, ok := m.Get(1); !ok || v != "one" {
		t.Fatalf("int and int64 keys index the same slot, got %v %v", v, ok)
	}
	m.Set(1, "uno")
	if m.Len() != 1 {
		t.Fatalf("cross-kind set must replace, got len %d", m.Len())
	}
}

func TestMapNonComparableKeys(t *testing.T) {
	m := typefence.NewMap()
	m.Set([]any{1, 2}, "a")
	m.Set([]any{1, 2}, "b")
	if m.Len() != 1 {
		t.Fatalf("equal slice keys must collapse, got len %d", m.Len())
	}
	if v, ok := m.Get([]any{1, 2}); !ok || v != "b" {
		t.Fatalf("want b, got %v %v", v, ok)
	}
	if _, ok := m.Get([]any{3}); ok {
		t.Fatalf("missing key must not be found")
	}
}

func TestMapRangeStops(t *testing.T) {
	m := typefence.NewMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	n := 0
	m.Range(func(k, v any) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Fatalf("range must stop when f returns false, visited %d", n)
	}
}

func TestSetFirstOccurrenceOrder(t *testing.T) {
	s := typefence.NewSet()
	for _, v := range []any{3, 1, 3, 2, 1} {
		s.Add(v)
	}
	if !reflect.DeepEqual(s.Elems(), []any{3, 1, 2}) {
		t.Fatalf("first occurrence fixes the position, got %v", s.Elems())
	}
}

func TestSetCrossKindDedup(t *testing.T) {
	s := typefence.NewSet()
	s.Add(1)
	s.Add(int64(1))
	s.Add(1.0)
	if s.Len() != 2 {
		// int(1) and int64(1) collapse; float64(1) is a distinct kind family.
		t.Fatalf("want 2 elements, got %v", s.Elems())
	}
	if !s.Contains(int64(1)) || !s.Contains(1) {
		t.Fatalf("contains must see both integer kinds")
	}
}

func TestSetNonComparableElems(t *testing.T) {
	s := typefence.NewSet()
	s.Add([]any{1})
	s.Add([]any{1})
	s.Add([]any{2})
	if s.Len() != 2 {
		t.Fatalf("equal slices must collapse, got %v", s.Elems())
	}
	if !s.Contains([]any{2}) {
		t.Fatalf("deep-equal lookup must find slice elements")
	}
}
