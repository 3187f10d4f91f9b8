// Package typed is the object-construction collaborator: it declares named,
// typed fields once, validates a whole batch of values at construction time,
// and re-validates on every later assignment through the Setter hook. The
// matching engine itself knows nothing about fields or records; this package
// attaches that context and aggregates per-field diagnostics into a single
// multi-error report.
package typed

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	typefence "github.com/reoring/typefence"
)

// Field declares one named, typed field of a record type.
type Field struct {
	Name string
	Type typefence.Descriptor
}

// Type is an immutable record declaration. Build it once and share it; it is
// safe for concurrent use.
type Type struct {
	name    string
	fields  []Field
	index   map[string]int
	mutable bool
	opts    typefence.Options
}

// TypeOption configures a Type at construction time.
type TypeOption func(*Type)

// Mutable allows records of this type to accept OnSet after construction.
// Records are immutable by default.
func Mutable() TypeOption { return func(t *Type) { t.mutable = true } }

// WithOptions sets the engine options used for every validation of this type.
func WithOptions(o typefence.Options) TypeOption { return func(t *Type) { t.opts = o } }

// NewType declares a record type. Field order is significant: it defines
// positional construction and the order of aggregated diagnostics.
func NewType(name string, fields []Field, opts ...TypeOption) (*Type, error) {
	t := &Type{
		name:   name,
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range t.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("typed: %s: field %d has no name", name, i)
		}
		if _, dup := t.index[f.Name]; dup {
			return nil, fmt.Errorf("typed: %s: duplicate field %q", name, f.Name)
		}
		t.index[f.Name] = i
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Name returns the declared type name.
func (t *Type) Name() string { return t.name }

// Fields returns the declared fields in order.
func (t *Type) Fields() []Field { return append([]Field(nil), t.fields...) }

// New validates the named values against the declaration and returns a
// Record holding the conforming (possibly coerced) values. All fields are
// required. Failures across independent fields aggregate into one
// Diagnostics error: declared fields report in declaration order, then
// unknown names in sorted order.
func (t *Type) New(values map[string]any) (*Record, error) {
	var diags typefence.Diagnostics
	vals := make([]any, len(t.fields))
	for i, f := range t.fields {
		v, ok := values[f.Name]
		if !ok {
			diags = typefence.AppendDiagnostics(diags, typefence.Diagnostic{
				Path:     typefence.Path{}.Field(f.Name),
				Code:     typefence.CodeRequired,
				Expected: f.Type,
				Received: "missing",
				Message:  t.name + ": required field missing",
			})
			continue
		}
		out, err := typefence.Validate(v, f.Type, t.opts)
		if err != nil {
			diags = appendRerooted(diags, f.Name, err)
			continue
		}
		vals[i] = out
	}
	for _, name := range unknownNames(values, t.index) {
		diags = typefence.AppendDiagnostics(diags, typefence.Diagnostic{
			Path:     typefence.Path{}.Field(name),
			Code:     typefence.CodeUnknownField,
			Received: typefence.TypeName(values[name]),
			Value:    typefence.Render(values[name]),
			Message:  t.name + ": unknown field",
		})
	}
	if len(diags) > 0 {
		return nil, diags
	}
	return &Record{typ: t, vals: vals}, nil
}

// NewPositional validates values bound to fields in declaration order.
func (t *Type) NewPositional(args ...any) (*Record, error) {
	if len(args) > len(t.fields) {
		return nil, typefence.Diagnostics{{
			Code:     typefence.CodeArgCount,
			Received: "arguments",
			Message:  fmt.Sprintf("%s: takes %d fields, got %d", t.name, len(t.fields), len(args)),
			Params:   map[string]any{"want": len(t.fields), "got": len(args)},
		}}
	}
	values := make(map[string]any, len(args))
	for i, a := range args {
		values[t.fields[i].Name] = a
	}
	return t.New(values)
}

// Setter is the on-assignment revalidation hook: assigning a field goes
// through OnSet, which delegates to the engine before storing anything.
type Setter interface {
	OnSet(field string, value any) error
}

// Record is a validated instance of a Type. Records are immutable unless
// their Type was declared Mutable.
type Record struct {
	typ  *Type
	vals []any
}

var _ Setter = (*Record)(nil)

// Type returns the record's declaration.
func (r *Record) Type() *Type { return r.typ }

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.typ.index[name]
	if !ok {
		return nil, false
	}
	return r.vals[i], true
}

// OnSet validates value against the field's descriptor and stores the
// conforming result. It fails with an immutable diagnostic unless the
// record's type was declared Mutable.
func (r *Record) OnSet(field string, value any) error {
	i, ok := r.typ.index[field]
	if !ok {
		return typefence.Diagnostics{{
			Path:     typefence.Path{}.Field(field),
			Code:     typefence.CodeUnknownField,
			Received: typefence.TypeName(value),
			Value:    typefence.Render(value),
			Message:  r.typ.name + ": unknown field",
		}}
	}
	if !r.typ.mutable {
		return typefence.Diagnostics{{
			Path:     typefence.Path{}.Field(field),
			Code:     typefence.CodeImmutable,
			Expected: r.typ.fields[i].Type,
			Received: typefence.TypeName(value),
			Message:  r.typ.name + ": record is immutable",
		}}
	}
	out, err := typefence.Validate(value, r.typ.fields[i].Type, r.typ.opts)
	if err != nil {
		return rerooted(field, err)
	}
	r.vals[i] = out
	return nil
}

// Equal reports whether two records share a declaration and hold equal
// field values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.typ == o.typ && reflect.DeepEqual(r.vals, o.vals)
}

// String renders the record with bounded field previews.
func (r *Record) String() string {
	b := &strings.Builder{}
	b.WriteString(r.typ.name)
	b.WriteByte('(')
	for i, f := range r.typ.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(typefence.Render(r.vals[i]))
	}
	b.WriteByte(')')
	return b.String()
}

// appendRerooted prefixes every diagnostic in err with the field segment and
// appends the result to dst.
func appendRerooted(dst typefence.Diagnostics, field string, err error) typefence.Diagnostics {
	return typefence.AppendDiagnostics(dst, rerooted(field, err)...)
}

func rerooted(field string, err error) typefence.Diagnostics {
	ds, ok := typefence.AsDiagnostics(err)
	if !ok {
		return typefence.Diagnostics{{
			Path:    typefence.Path{}.Field(field),
			Code:    typefence.CodeInvalidType,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	out := make(typefence.Diagnostics, 0, len(ds))
	for _, d := range ds {
		d.Path = append(typefence.Path{}.Field(field), d.Path...)
		out = append(out, d)
	}
	return out
}

func unknownNames(values map[string]any, index map[string]int) []string {
	var out []string
	for name := range values {
		if _, ok := index[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
