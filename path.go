package typefence

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes the logical role of a path segment.
type SegmentKind int

const (
	SegField       SegmentKind = iota // Named field of an object or record.
	SegIndex                          // Position within a sequence or tuple.
	SegKey                            // Key within a mapping.
	SegAlternative                    // Selected union alternative.
)

// Segment is one step on the logical path from the validation root to a
// nested element.
type Segment struct {
	Kind  SegmentKind
	Name  string // Set for SegField and SegKey.
	Index int    // Set for SegIndex and SegAlternative.
}

// Path is the ordered list of segments from the root of the original
// validation request. Builder methods copy on append so derived paths never
// alias their parent.
type Path []Segment

// Field extends the path with a named field segment.
func (p Path) Field(name string) Path {
	return append(append(Path{}, p...), Segment{Kind: SegField, Name: name})
}

// Index extends the path with a positional segment.
func (p Path) Index(i int) Path {
	return append(append(Path{}, p...), Segment{Kind: SegIndex, Index: i})
}

// Key extends the path with a mapping-key segment.
func (p Path) Key(name string) Path {
	return append(append(Path{}, p...), Segment{Kind: SegKey, Name: name})
}

// Alternative extends the path with a union-alternative segment.
func (p Path) Alternative(i int) Path {
	return append(append(Path{}, p...), Segment{Kind: SegAlternative, Index: i})
}

// Pointer renders the path as an RFC 6901 JSON Pointer. Field and key names
// escape '~' and '/'; indexes and union alternatives render as numbers.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		switch s.Kind {
		case SegIndex, SegAlternative:
			b.WriteString(strconv.Itoa(s.Index))
		default:
			esc := strings.ReplaceAll(strings.ReplaceAll(s.Name, "~", "~0"), "/", "~1")
			b.WriteString(esc)
		}
	}
	return b.String()
}
