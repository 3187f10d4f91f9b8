// Package guard is the call-site collaborator: it binds positional and named
// arguments to declared parameter types, validates each one through the
// engine, and optionally validates the return value. Like the other
// collaborators it owns the caller-visible context (function name, parameter
// names and positions) that the engine does not know about.
package guard

import (
	"fmt"
	"sort"

	typefence "github.com/reoring/typefence"
)

// Param declares one named, typed parameter.
type Param struct {
	Name string
	Type typefence.Descriptor
}

// Signature is an immutable function contract: parameter declarations in
// positional order plus an optional result descriptor.
type Signature struct {
	name   string
	params []Param
	index  map[string]int
	result *typefence.Descriptor
	opts   typefence.Options
}

// SigOption configures a Signature at construction time.
type SigOption func(*Signature)

// WithResult declares the return type; Wrap validates returned values
// against it.
func WithResult(d typefence.Descriptor) SigOption {
	return func(s *Signature) { s.result = &d }
}

// WithOptions sets the engine options used for every validation.
func WithOptions(o typefence.Options) SigOption {
	return func(s *Signature) { s.opts = o }
}

// NewSignature declares a function contract.
func NewSignature(name string, params []Param, opts ...SigOption) (*Signature, error) {
	s := &Signature{
		name:   name,
		params: append([]Param(nil), params...),
		index:  make(map[string]int, len(params)),
	}
	for i, p := range s.params {
		if p.Name == "" {
			return nil, fmt.Errorf("guard: %s: parameter %d has no name", name, i)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("guard: %s: duplicate parameter %q", name, p.Name)
		}
		s.index[p.Name] = i
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name returns the declared function name.
func (s *Signature) Name() string { return s.name }

// Params returns the parameter declarations in order.
func (s *Signature) Params() []Param { return append([]Param(nil), s.params...) }

// Bind binds positional arguments first, then named ones, validates each
// against its parameter descriptor, and returns the conforming values in
// parameter order. Failures across independent parameters aggregate into one
// Diagnostics error, each rooted at the parameter name.
func (s *Signature) Bind(args []any, kwargs map[string]any) ([]any, error) {
	if len(args) > len(s.params) {
		return nil, typefence.Diagnostics{{
			Code:     typefence.CodeArgCount,
			Received: "arguments",
			Message:  fmt.Sprintf("%s: takes %d arguments, got %d", s.name, len(s.params), len(args)),
			Params:   map[string]any{"want": len(s.params), "got": len(args)},
		}}
	}

	bound := make([]any, len(s.params))
	present := make([]bool, len(s.params))
	var diags typefence.Diagnostics

	for i, a := range args {
		bound[i] = a
		present[i] = true
	}
	for _, name := range sortedNames(kwargs) {
		i, ok := s.index[name]
		if !ok {
			diags = typefence.AppendDiagnostics(diags, typefence.Diagnostic{
				Path:     typefence.Path{}.Field(name),
				Code:     typefence.CodeUnknownField,
				Received: typefence.TypeName(kwargs[name]),
				Value:    typefence.Render(kwargs[name]),
				Message:  s.name + ": unknown parameter",
			})
			continue
		}
		if present[i] {
			diags = typefence.AppendDiagnostics(diags, typefence.Diagnostic{
				Path:    typefence.Path{}.Field(name),
				Code:    typefence.CodeArgCount,
				Message: fmt.Sprintf("%s: multiple values for parameter %q", s.name, name),
			})
			continue
		}
		bound[i] = kwargs[name]
		present[i] = true
	}

	for i, p := range s.params {
		if !present[i] {
			diags = typefence.AppendDiagnostics(diags, typefence.Diagnostic{
				Path:     typefence.Path{}.Field(p.Name),
				Code:     typefence.CodeRequired,
				Expected: p.Type,
				Received: "missing",
				Message:  s.name + ": missing argument",
			})
			continue
		}
		out, err := typefence.Validate(bound[i], p.Type, s.opts)
		if err != nil {
			diags = typefence.AppendDiagnostics(diags, reroot(p.Name, err)...)
			continue
		}
		bound[i] = out
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return bound, nil
}

// Fn is the uniform shape guarded functions take: validated arguments in
// parameter order, one result.
type Fn func(args []any) (any, error)

// Wrap returns a function that validates its arguments against the
// signature, invokes fn with the conforming values, and validates the result
// when a return type was declared.
func (s *Signature) Wrap(fn Fn) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		bound, err := s.Bind(args, nil)
		if err != nil {
			return nil, err
		}
		out, err := fn(bound)
		if err != nil {
			return nil, err
		}
		if s.result == nil {
			return out, nil
		}
		res, err := typefence.Validate(out, *s.result, s.opts)
		if err != nil {
			return nil, reroot("return", err)
		}
		return res, nil
	}
}

func reroot(name string, err error) typefence.Diagnostics {
	ds, ok := typefence.AsDiagnostics(err)
	if !ok {
		return typefence.Diagnostics{{
			Path:    typefence.Path{}.Field(name),
			Code:    typefence.CodeInvalidType,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	out := make(typefence.Diagnostics, 0, len(ds))
	for _, d := range ds {
		d.Path = append(typefence.Path{}.Field(name), d.Path...)
		out = append(out, d)
	}
	return out
}

func sortedNames(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
