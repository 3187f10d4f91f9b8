package typefence_test

import (
	"encoding/json"
	"math"
	"testing"

	typefence "github.com/reoring/typefence"
)

func mustRejectWith(t *testing.T, err error, code string) typefence.Diagnostic {
	t.Helper()
	ds, ok := typefence.AsDiagnostics(err)
	if !ok {
		t.Fatalf("expected Diagnostics, got: %v", err)
	}
	if len(ds) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
	if ds[0].Code != code {
		t.Fatalf("want code %q, got %q (%v)", code, ds[0].Code, err)
	}
	return ds[0]
}

func TestClassifyInt(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want typefence.Verdict
	}{
		{"int", 7, typefence.Exact},
		{"int64", int64(7), typefence.Exact},
		{"uint8", uint8(7), typefence.Exact},
		{"float", 7.0, typefence.Coercible},
		{"numeric string", "7", typefence.Coercible},
		{"padded string", "  42 ", typefence.Coercible},
		{"json.Number", json.Number("7"), typefence.Coercible},
		{"bool", true, typefence.Rejected},
		{"word string", "seven", typefence.Rejected},
		{"nil", nil, typefence.Rejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := typefence.Classify(tc.in, typefence.Int())
			if got != tc.want {
				t.Fatalf("Classify(%v, int): want %v, got %v", tc.in, tc.want, got)
			}
		})
	}
}

func TestClassifyIntNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := typefence.Classify(f, typefence.Int())
		mustRejectWith(t, err, typefence.CodeParseError)
	}
}

func TestClassifyFloat(t *testing.T) {
	if v, _ := typefence.Classify(3.5, typefence.Float()); v != typefence.Exact {
		t.Fatalf("float64 should be exact, got %v", v)
	}
	if v, _ := typefence.Classify(3, typefence.Float()); v != typefence.Coercible {
		t.Fatalf("int should widen, got %v", v)
	}
	if v, _ := typefence.Classify("2.5", typefence.Float()); v != typefence.Coercible {
		t.Fatalf("numeric string should coerce, got %v", v)
	}
	_, err := typefence.Classify(true, typefence.Float())
	mustRejectWith(t, err, typefence.CodeInvalidType)
}

func TestClassifyString(t *testing.T) {
	if v, _ := typefence.Classify("hi", typefence.String()); v != typefence.Exact {
		t.Fatalf("string should be exact, got %v", v)
	}
	if v, _ := typefence.Classify(42, typefence.String()); v != typefence.Coercible {
		t.Fatalf("int should stringify, got %v", v)
	}
	_, err := typefence.Classify(nil, typefence.String())
	mustRejectWith(t, err, typefence.CodeInvalidType)
}

func TestClassifyBoolGate(t *testing.T) {
	if v, _ := typefence.Classify(true, typefence.Bool()); v != typefence.Exact {
		t.Fatalf("bool should be exact, got %v", v)
	}
	// Numbers reach bool only through the opt-in convention.
	_, err := typefence.Classify(1, typefence.Bool())
	mustRejectWith(t, err, typefence.CodeInvalidType)

	on := typefence.Options{BoolFromNumber: true}
	if v, _ := typefence.Classify(1, typefence.Bool(), on); v != typefence.Coercible {
		t.Fatalf("1 should coerce with BoolFromNumber, got %v", v)
	}
	if v, _ := typefence.Classify(0.0, typefence.Bool(), on); v != typefence.Coercible {
		t.Fatalf("0.0 should coerce with BoolFromNumber, got %v", v)
	}
	// Strings stay rejected either way.
	_, err = typefence.Classify("true", typefence.Bool(), on)
	mustRejectWith(t, err, typefence.CodeInvalidType)
}

func TestClassifyAnyAndObject(t *testing.T) {
	for _, in := range []any{nil, 1, "x", []any{1}, map[string]any{"a": 1}} {
		if v, _ := typefence.Classify(in, typefence.Any()); v != typefence.Exact {
			t.Fatalf("any should accept %v exactly, got %v", in, v)
		}
		if v, _ := typefence.Classify(in, typefence.Object()); v != typefence.Exact {
			t.Fatalf("object should accept %v exactly, got %v", in, v)
		}
	}
}

func TestClassifySequence(t *testing.T) {
	seq := typefence.SequenceOf(typefence.Int())
	if v, _ := typefence.Classify([]any{1, 2, 3}, seq); v != typefence.Exact {
		t.Fatalf("all-int slice should be exact, got %v", v)
	}
	if v, _ := typefence.Classify([]any{1, "2"}, seq); v != typefence.Coercible {
		t.Fatalf("mixed slice should coerce, got %v", v)
	}
	// Lone scalar wraps into a one-element sequence.
	if v, _ := typefence.Classify(5, seq); v != typefence.Coercible {
		t.Fatalf("lone scalar should wrap, got %v", v)
	}
	_, err := typefence.Classify([]any{1, true}, seq)
	d := mustRejectWith(t, err, typefence.CodeInvalidType)
	if d.Pointer() != "/1" {
		t.Fatalf("want pointer /1, got %q", d.Pointer())
	}
	_, err = typefence.Classify(nil, seq)
	mustRejectWith(t, err, typefence.CodeInvalidType)
}

func TestClassifyTupleArity(t *testing.T) {
	tup := typefence.TupleOf(typefence.Int(), typefence.Int(), typefence.Int())
	_, err := typefence.Classify([]any{1, 2}, tup)
	d := mustRejectWith(t, err, typefence.CodeArityMismatch)
	if d.Pointer() != "/" {
		t.Fatalf("want pointer /, got %q", d.Pointer())
	}
	if d.Params["want"] != 3 || d.Params["got"] != 2 {
		t.Fatalf("want params want=3 got=2, got %v", d.Params)
	}
}

func TestClassifyTuple(t *testing.T) {
	tup := typefence.TupleOf(typefence.Int(), typefence.String())
	if v, _ := typefence.Classify([]any{1, "x"}, tup); v != typefence.Exact {
		t.Fatalf("conforming tuple should be exact, got %v", v)
	}
	if v, _ := typefence.Classify([]any{"1", "x"}, tup); v != typefence.Coercible {
		t.Fatalf("coercible position should coerce, got %v", v)
	}
	// A lone scalar is a one-element source and must pass the arity check.
	if v, _ := typefence.Classify(5, typefence.TupleOf(typefence.Int())); v != typefence.Coercible {
		t.Fatalf("scalar against 1-tuple should coerce, got %v", v)
	}
	_, err := typefence.Classify(5, tup)
	mustRejectWith(t, err, typefence.CodeArityMismatch)
}

func TestClassifyMapShapes(t *testing.T) {
	md := typefence.MapOf(typefence.String(), typefence.Int())

	if v, _ := typefence.Classify(map[string]any{"a": 1}, md); v != typefence.Exact {
		t.Fatalf("conforming mapping should be exact, got %v", v)
	}
	if v, _ := typefence.Classify(map[string]any{"a": "1"}, md); v != typefence.Coercible {
		t.Fatalf("mapping with coercible value should coerce, got %v", v)
	}
	pairs := []any{[]any{"a", 1}, []any{"b", 2}}
	if v, _ := typefence.Classify(pairs, md); v != typefence.Coercible {
		t.Fatalf("pair list should coerce, got %v", v)
	}
	flat := []any{"a", 1, "b", 2}
	if v, _ := typefence.Classify(flat, md); v != typefence.Coercible {
		t.Fatalf("flat list should coerce, got %v", v)
	}
	// An empty iterable carries no key/value structure.
	_, err := typefence.Classify([]any{}, md)
	mustRejectWith(t, err, typefence.CodeInvalidType)
	// An odd-length flat list cannot split into pairs.
	_, err = typefence.Classify([]any{"a", 1, "b"}, md)
	mustRejectWith(t, err, typefence.CodeInvalidType)
	// Rejected value inside a mapping points at its key.
	_, err = typefence.Classify(map[string]any{"a": true}, md)
	d := mustRejectWith(t, err, typefence.CodeInvalidType)
	if d.Pointer() != "/a" {
		t.Fatalf("want pointer /a, got %q", d.Pointer())
	}
}

func TestClassifySet(t *testing.T) {
	sd := typefence.SetOf(typefence.Int())
	s := typefence.NewSet()
	s.Add(1)
	s.Add(2)
	if v, _ := typefence.Classify(s, sd); v != typefence.Exact {
		t.Fatalf("conforming set should be exact, got %v", v)
	}
	if v, _ := typefence.Classify([]any{1, 2, 2}, sd); v != typefence.Coercible {
		t.Fatalf("slice should coerce to set, got %v", v)
	}
	if v, _ := typefence.Classify(7, sd); v != typefence.Coercible {
		t.Fatalf("lone scalar should wrap, got %v", v)
	}
}

func TestClassifyUnionOrder(t *testing.T) {
	// The first exact alternative wins outright.
	if v, _ := typefence.Classify(5, typefence.UnionOf(typefence.Int(), typefence.Float())); v != typefence.Exact {
		t.Fatalf("int against int|float should be exact, got %v", v)
	}
	// Exactness beats coercibility regardless of declared order.
	if v, _ := typefence.Classify(3.5, typefence.UnionOf(typefence.Int(), typefence.Float())); v != typefence.Exact {
		t.Fatalf("3.5 against int|float should hit float exactly, got %v", v)
	}
	_, err := typefence.Classify(true, typefence.UnionOf(typefence.Int(), typefence.Float()))
	d := mustRejectWith(t, err, typefence.CodeUnionMismatch)
	alts, ok := d.Params["alternatives"].([]string)
	if !ok || len(alts) != 2 {
		t.Fatalf("want two per-alternative reasons, got %v", d.Params["alternatives"])
	}
}

func TestClassifyDepthLimit(t *testing.T) {
	d := typefence.Int()
	for i := 0; i < typefence.DefaultMaxDepth; i++ {
		d = typefence.SequenceOf(d)
	}
	// The limit is enforced before any matching, so the value is irrelevant.
	_, err := typefence.Classify(nil, d)
	diag := mustRejectWith(t, err, typefence.CodeDepthExceeded)
	if diag.Params["limit"] != typefence.DefaultMaxDepth {
		t.Fatalf("want limit param %d, got %v", typefence.DefaultMaxDepth, diag.Params["limit"])
	}
	// A raised limit admits the same descriptor.
	if _, err := typefence.Classify([]any{}, d, typefence.Options{MaxDepth: 128}); err != nil {
		t.Fatalf("raised limit should admit the descriptor: %v", err)
	}
}

func TestOptionsLastWins(t *testing.T) {
	v, _ := typefence.Classify(1, typefence.Bool(),
		typefence.Options{}, typefence.Options{BoolFromNumber: true})
	if v != typefence.Coercible {
		t.Fatalf("last options value should win, got %v", v)
	}
}
