package typefence

import "github.com/reoring/typefence/i18n"

// DefaultMaxDepth bounds descriptor nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options configures the engine. The zero value is ready to use.
type Options struct {
	// MaxDepth bounds descriptor nesting depth. Descriptors nested deeper
	// are rejected with depth_exceeded before any matching or coercion work,
	// regardless of the input value. Zero means DefaultMaxDepth.
	MaxDepth int
	// BoolFromNumber enables the zero/non-zero convention for coercing
	// integers and floats to booleans. Disabled by default; strings never
	// coerce to bool either way.
	BoolFromNumber bool
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func pickOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

// Classify decides whether v conforms to d. It is pure and safe for
// concurrent use. The returned error is non-nil exactly when the verdict is
// Rejected and carries the Diagnostics.
func Classify(v any, d Descriptor, opts ...Options) (Verdict, error) {
	opt := pickOptions(opts)
	if diags := checkDepth(d, opt); diags != nil {
		return Rejected, diags
	}
	e := &engine{opts: opt}
	oc := e.classify(v, d, nil)
	if oc.verdict == Rejected {
		return Rejected, oc.diags
	}
	return oc.verdict, nil
}

// Coerce converts v into a value conforming to d. It is intended to be
// called after Classify returned Coercible; calling it on a rejected pair
// returns the same Diagnostics Classify would.
func Coerce(v any, d Descriptor, opts ...Options) (any, error) {
	opt := pickOptions(opts)
	if diags := checkDepth(d, opt); diags != nil {
		return nil, diags
	}
	e := &engine{opts: opt}
	out, diags := e.coerce(v, d, nil)
	if diags != nil {
		return nil, diags
	}
	return out, nil
}

// Validate is the convenience composition: classify, then return v unchanged
// on Exact, the coerced value on Coercible, or the Diagnostics on Rejected.
// A coercion failure partway through a container rebuild aborts the whole
// call; partial results are never returned.
func Validate(v any, d Descriptor, opts ...Options) (any, error) {
	opt := pickOptions(opts)
	if diags := checkDepth(d, opt); diags != nil {
		return nil, diags
	}
	e := &engine{opts: opt}
	oc := e.classify(v, d, nil)
	switch oc.verdict {
	case Exact:
		return v, nil
	case Rejected:
		return nil, oc.diags
	}
	out, diags := e.coerce(v, d, nil)
	if diags != nil {
		return nil, diags
	}
	return out, nil
}

// Is reports whether v conforms to d, either exactly or by coercion.
func Is(v any, d Descriptor, opts ...Options) bool {
	verdict, _ := Classify(v, d, opts...)
	return verdict != Rejected
}

// checkDepth rejects adversarially nested descriptors up front so the
// recursion below is bounded by construction. The walk is iterative and
// stops at the first node past the limit, so the check itself stays safe on
// arbitrarily deep trees.
func checkDepth(d Descriptor, opt Options) Diagnostics {
	limit := opt.maxDepth()
	if !exceedsDepth(&d, limit) {
		return nil
	}
	return Diagnostics{{
		Path:     nil,
		Code:     CodeDepthExceeded,
		Expected: d,
		Received: "-",
		Message:  i18n.T(CodeDepthExceeded, map[string]string{"expected": d.Kind().String()}),
		Params:   map[string]any{"limit": limit},
	}}
}

func exceedsDepth(root *Descriptor, limit int) bool {
	type frame struct {
		d     *Descriptor
		depth int
	}
	stack := []frame{{root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > limit {
			return true
		}
		switch f.d.kind {
		case KindSequence, KindSet:
			stack = append(stack, frame{f.d.elem, f.depth + 1})
		case KindMap:
			stack = append(stack, frame{f.d.key, f.depth + 1}, frame{f.d.value, f.depth + 1})
		case KindTuple, KindUnion:
			for i := range f.d.items {
				stack = append(stack, frame{&f.d.items[i], f.depth + 1})
			}
		}
	}
	return false
}
