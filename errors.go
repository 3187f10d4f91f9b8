package typefence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/typefence/i18n"
)

// Diagnostic codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeArityMismatch = "arity_mismatch"
	CodeParseError    = "parse_error"
	CodeDepthExceeded = "depth_exceeded"
	CodeUnionMismatch = "union_mismatch"
	CodeTruncated     = "truncated"
	// Collaborator passes (record construction, call binding)
	CodeRequired     = "required"
	CodeUnknownField = "unknown_field"
	CodeImmutable    = "immutable"
	CodeArgCount     = "arg_count"
)

// Diagnostic is a single structured failure report. It is immutable once
// built and carries no live references into caller memory: the offending
// value is retained only as a bounded rendering.
type Diagnostic struct {
	Path     Path       // Logical path from the validation root.
	Code     string     // One of the codes listed above.
	Expected Descriptor // The descriptor the value failed against.
	Received string     // Runtime type name of the offending value.
	Value    string     // Bounded, human-readable rendering of the offending value.
	Message  string
	Cause    error // Optional: underlying error (decoder failures and the like).
	// Params carries structured parameters (e.g., {"want":3, "got":2})
	// for i18n and observability.
	Params map[string]any
}

// Pointer renders the diagnostic's path as a JSON Pointer.
func (d Diagnostic) Pointer() string { return d.Path.Pointer() }

// Diagnostics is a collection of failure reports that implements error.
// The engine itself reports exactly one diagnostic per descriptor tree;
// collaborators aggregate across independent fields or parameters.
type Diagnostics []Diagnostic

// Error summarizes the first few diagnostics.
func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(ds)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := ds[i]
		// e.g. invalid_type at /path: expected int, got string
		fmt.Fprintf(b, "%s at %s", it.Code, it.Pointer())
		if it.Expected.Kind() != KindInvalid {
			fmt.Fprintf(b, ": expected %s, got %s", it.Expected, it.Received)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendDiagnostics appends diagnostics to the destination, initializing the
// slice when needed.
func AppendDiagnostics(dst Diagnostics, more ...Diagnostic) Diagnostics {
	if dst == nil {
		dst = Diagnostics{}
	}
	dst = append(dst, more...)
	return dst
}

// AsDiagnostics extracts Diagnostics from an error using errors.As internally.
func AsDiagnostics(err error) (Diagnostics, bool) {
	if err == nil {
		return nil, false
	}
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	return nil, false
}

// DiagnosticAt builds a Diagnostic for the offending value v at path p. The
// value is rendered immediately so the diagnostic holds no reference to v.
func DiagnosticAt(p Path, code string, expected Descriptor, v any) Diagnostic {
	return Diagnostic{
		Path:     p,
		Code:     code,
		Expected: expected,
		Received: TypeName(v),
		Value:    Render(v),
		Message:  i18n.T(code, map[string]string{"expected": expected.String()}),
	}
}

func rejectedAt(p Path, code string, expected Descriptor, v any) Diagnostics {
	return Diagnostics{DiagnosticAt(p, code, expected, v)}
}
