package typefence

import "strings"

// Kind enumerates the closed set of descriptor tags.
type Kind int

const (
	KindInvalid Kind = iota // Zero value; never matches anything.
	KindInt
	KindFloat
	KindString
	KindBool
	KindObject // Any-object scalar: matches every value, renders as "object".
	KindAny    // Matches everything, no coercion.
	KindSequence
	KindTuple
	KindMap
	KindSet
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindAny:
		return "any"
	case KindSequence:
		return "sequence"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindUnion:
		return "union"
	default:
		return "invalid"
	}
}

// Descriptor is the declarative tree describing an expected shape. Descriptors
// are immutable once constructed and safe to share across goroutines; build
// them once per declared field or parameter and reuse them.
//
// The tree is always acyclic: constructors copy child lists and there is no
// way to express a self-referential descriptor.
type Descriptor struct {
	kind  Kind
	elem  *Descriptor  // Sequence/Set element.
	key   *Descriptor  // Map key.
	value *Descriptor  // Map value.
	items []Descriptor // Tuple positions or Union alternatives, in declared order.
}

// Int describes the integer scalar.
func Int() Descriptor { return Descriptor{kind: KindInt} }

// Float describes the floating-point scalar.
func Float() Descriptor { return Descriptor{kind: KindFloat} }

// String describes the string scalar.
func String() Descriptor { return Descriptor{kind: KindString} }

// Bool describes the boolean scalar.
func Bool() Descriptor { return Descriptor{kind: KindBool} }

// Object describes the any-object scalar: every value conforms as-is.
func Object() Descriptor { return Descriptor{kind: KindObject} }

// Any matches everything and never coerces.
func Any() Descriptor { return Descriptor{kind: KindAny} }

// SequenceOf describes an ordered, homogeneous, unbounded sequence.
func SequenceOf(elem Descriptor) Descriptor {
	return Descriptor{kind: KindSequence, elem: &elem}
}

// TupleOf describes a positional, heterogeneous container of fixed arity.
func TupleOf(items ...Descriptor) Descriptor {
	return Descriptor{kind: KindTuple, items: append([]Descriptor(nil), items...)}
}

// MapOf describes a mapping with unique keys.
func MapOf(key, value Descriptor) Descriptor {
	return Descriptor{kind: KindMap, key: &key, value: &value}
}

// SetOf describes an unordered container of unique elements.
func SetOf(elem Descriptor) Descriptor {
	return Descriptor{kind: KindSet, elem: &elem}
}

// UnionOf describes an ordered list of alternatives. Ordering is significant:
// the first Exact alternative wins, then the first Coercible one.
func UnionOf(alts ...Descriptor) Descriptor {
	return Descriptor{kind: KindUnion, items: append([]Descriptor(nil), alts...)}
}

// Kind reports the descriptor's tag.
func (d Descriptor) Kind() Kind { return d.kind }

// Elem returns the element descriptor of a Sequence or Set.
func (d Descriptor) Elem() Descriptor {
	if d.elem == nil {
		return Descriptor{}
	}
	return *d.elem
}

// Key returns the key descriptor of a Map.
func (d Descriptor) Key() Descriptor {
	if d.key == nil {
		return Descriptor{}
	}
	return *d.key
}

// Value returns the value descriptor of a Map.
func (d Descriptor) Value() Descriptor {
	if d.value == nil {
		return Descriptor{}
	}
	return *d.value
}

// Items returns a copy of the tuple positions or union alternatives.
func (d Descriptor) Items() []Descriptor { return append([]Descriptor(nil), d.items...) }

// Arity returns the number of tuple positions or union alternatives.
func (d Descriptor) Arity() int { return len(d.items) }

// Depth returns the nesting depth of the descriptor tree. A scalar is depth 1.
func (d Descriptor) Depth() int {
	max := 0
	switch d.kind {
	case KindSequence, KindSet:
		max = d.elem.Depth()
	case KindMap:
		if kd := d.key.Depth(); kd > max {
			max = kd
		}
		if vd := d.value.Depth(); vd > max {
			max = vd
		}
	case KindTuple, KindUnion:
		for i := range d.items {
			if id := d.items[i].Depth(); id > max {
				max = id
			}
		}
	}
	return max + 1
}

// String renders the descriptor in a compact, Go-flavored notation such as
// "map[string]int", "(int, string)" or "int | string". The rendering appears
// in diagnostics as the expected type.
func (d Descriptor) String() string {
	switch d.kind {
	case KindSequence:
		return "[]" + d.elem.String()
	case KindSet:
		return "set[" + d.elem.String() + "]"
	case KindMap:
		return "map[" + d.key.String() + "]" + d.value.String()
	case KindTuple:
		parts := make([]string, len(d.items))
		for i := range d.items {
			parts[i] = d.items[i].String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindUnion:
		parts := make([]string, len(d.items))
		for i := range d.items {
			parts[i] = d.items[i].String()
		}
		return strings.Join(parts, " | ")
	default:
		return d.kind.String()
	}
}
