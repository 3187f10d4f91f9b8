package typefence

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Verdict is the Matcher's classification of a value against a descriptor.
type Verdict int

const (
	Exact     Verdict = iota // Value already conforms; no copy needed.
	Coercible                // A deterministic, safe conversion exists.
	Rejected                 // Structurally incompatible; see the Diagnostic.
)

func (v Verdict) String() string {
	switch v {
	case Exact:
		return "exact"
	case Coercible:
		return "coercible"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// mapShape identifies which source shape a map classification accepted.
type mapShape int

const (
	shapeMapping mapShape = iota // A mapping needing element coercion.
	shapePairs                   // An iterable of 2-element pairs.
	shapeFlat                    // A flat iterable consumed as key, value, key, value.
)

// outcome records a classification decision. The Coercer executes exactly
// what is recorded here instead of re-deriving its own verdict: the selected
// union alternative, the accepted map source shape, and the result of a
// scalar's trial parse all travel with the verdict.
type outcome struct {
	verdict Verdict
	diags   Diagnostics // Set when verdict == Rejected; always a single entry.
	alt     int         // Union: index of the selected alternative.
	shape   mapShape    // Map: accepted source shape.
	parsed  any         // Scalar: result of the trial parse/conversion.
}

func exactOutcome() outcome { return outcome{verdict: Exact} }

func coercedTo(parsed any) outcome { return outcome{verdict: Coercible, parsed: parsed} }

func rejection(ds Diagnostics) outcome { return outcome{verdict: Rejected, diags: ds} }

type engine struct {
	opts Options
}

func (e *engine) classify(v any, d Descriptor, p Path) outcome {
	switch d.kind {
	case KindAny, KindObject:
		return exactOutcome()
	case KindInt:
		return e.classifyInt(v, d, p)
	case KindFloat:
		return e.classifyFloat(v, d, p)
	case KindString:
		return e.classifyString(v, d, p)
	case KindBool:
		return e.classifyBool(v, d, p)
	case KindSequence:
		return e.classifySequence(v, d, p)
	case KindTuple:
		return e.classifyTuple(v, d, p)
	case KindMap:
		return e.classifyMap(v, d, p)
	case KindSet:
		return e.classifySet(v, d, p)
	case KindUnion:
		return e.classifyUnion(v, d, p)
	default:
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
}

// ---- scalars ----

func (e *engine) classifyInt(v any, d Descriptor, p Path) outcome {
	if _, ok := v.(bool); ok {
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
	if _, ok := intValue(v); ok {
		return exactOutcome()
	}
	if f, ok := floatValue(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return rejection(rejectedAt(p, CodeParseError, d, v))
		}
		return coercedTo(int64(f)) // narrow numerically, truncating toward zero
	}
	if s, ok := stringValue(v); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return rejection(rejectedAt(p, CodeParseError, d, v))
		}
		return coercedTo(n)
	}
	return rejection(rejectedAt(p, CodeInvalidType, d, v))
}

func (e *engine) classifyFloat(v any, d Descriptor, p Path) outcome {
	if _, ok := v.(bool); ok {
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
	if _, ok := floatValue(v); ok {
		return exactOutcome()
	}
	if n, ok := intValue(v); ok {
		return coercedTo(float64(n))
	}
	if s, ok := stringValue(v); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return rejection(rejectedAt(p, CodeParseError, d, v))
		}
		return coercedTo(f)
	}
	return rejection(rejectedAt(p, CodeInvalidType, d, v))
}

func (e *engine) classifyString(v any, d Descriptor, p Path) outcome {
	if _, ok := v.(string); ok {
		return exactOutcome()
	}
	if v == nil {
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
	return coercedTo(stringify(v))
}

func (e *engine) classifyBool(v any, d Descriptor, p Path) outcome {
	if _, ok := v.(bool); ok {
		return exactOutcome()
	}
	if e.opts.BoolFromNumber {
		if n, ok := intValue(v); ok {
			return coercedTo(n != 0)
		}
		if f, ok := floatValue(v); ok {
			return coercedTo(f != 0)
		}
	}
	return rejection(rejectedAt(p, CodeInvalidType, d, v))
}

// ---- containers ----

func (e *engine) classifySequence(v any, d Descriptor, p Path) outcome {
	elem := *d.elem
	if es, ok := sliceElems(v); ok {
		verdict := Exact
		for i, el := range es {
			oc := e.classify(el, elem, p.Index(i))
			switch oc.verdict {
			case Rejected:
				return oc
			case Coercible:
				verdict = Coercible
			}
		}
		return outcome{verdict: verdict}
	}
	if es, ok := iterableElems(v); ok {
		for i, el := range es {
			if oc := e.classify(el, elem, p.Index(i)); oc.verdict == Rejected {
				return oc
			}
		}
		return outcome{verdict: Coercible}
	}
	if v == nil {
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
	// Lone scalar: treated as a one-element sequence.
	if oc := e.classify(v, elem, p); oc.verdict == Rejected {
		return oc
	}
	return outcome{verdict: Coercible}
}

func (e *engine) classifyTuple(v any, d Descriptor, p Path) outcome {
	items := d.items
	es, isSlice := sliceElems(v)
	if !isSlice {
		if more, ok := iterableElems(v); ok {
			es = more
		} else if v == nil {
			return rejection(rejectedAt(p, CodeInvalidType, d, v))
		} else {
			// Lone scalar: a one-element source, subject to the arity check.
			es = []any{v}
		}
	}
	if len(es) != len(items) {
		diag := DiagnosticAt(p, CodeArityMismatch, d, v)
		diag.Params = map[string]any{"want": len(items), "got": len(es)}
		return rejection(Diagnostics{diag})
	}
	verdict := Exact
	if !isSlice {
		verdict = Coercible
	}
	for i := range items {
		oc := e.classify(es[i], items[i], p.Index(i))
		switch oc.verdict {
		case Rejected:
			return oc
		case Coercible:
			verdict = Coercible
		}
	}
	return outcome{verdict: verdict}
}

func (e *engine) classifyMap(v any, d Descriptor, p Path) outcome {
	key, value := *d.key, *d.value

	// (a) already a mapping, possibly needing element coercion.
	if keys, vals, ok := mappingPairs(v); ok {
		verdict := Exact
		for i := range keys {
			seg := p.Key(stringify(keys[i]))
			koc := e.classify(keys[i], key, seg)
			if koc.verdict == Rejected {
				return koc
			}
			voc := e.classify(vals[i], value, seg)
			if voc.verdict == Rejected {
				return voc
			}
			if koc.verdict == Coercible || voc.verdict == Coercible {
				verdict = Coercible
			}
		}
		return outcome{verdict: verdict, shape: shapeMapping}
	}

	es, ok := sliceElems(v)
	if !ok || len(es) == 0 {
		// An empty iterable has no key/value structure to recover.
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}

	// (b) an iterable of 2-element pairs.
	var pairsFailure, flatFailure *outcome
	if allPairs(es) {
		oc := e.classifyPairShape(es, key, value, p)
		if oc.verdict != Rejected {
			return oc
		}
		pairsFailure = &oc
	}

	// (c) a flat iterable of even length: key, value, key, value.
	if len(es)%2 == 0 {
		oc := e.classifyFlatShape(es, key, value, p)
		if oc.verdict != Rejected {
			return oc
		}
		flatFailure = &oc
	}

	if pairsFailure != nil {
		return *pairsFailure
	}
	if flatFailure != nil {
		return *flatFailure
	}
	return rejection(rejectedAt(p, CodeInvalidType, d, v))
}

func (e *engine) classifyPairShape(es []any, key, value Descriptor, p Path) outcome {
	for i, pair := range es {
		kv, _ := sliceElems(pair)
		if oc := e.classify(kv[0], key, p.Index(i).Index(0)); oc.verdict == Rejected {
			return oc
		}
		if oc := e.classify(kv[1], value, p.Index(i).Index(1)); oc.verdict == Rejected {
			return oc
		}
	}
	return outcome{verdict: Coercible, shape: shapePairs}
}

func (e *engine) classifyFlatShape(es []any, key, value Descriptor, p Path) outcome {
	for i := 0; i < len(es); i += 2 {
		if oc := e.classify(es[i], key, p.Index(i)); oc.verdict == Rejected {
			return oc
		}
		if oc := e.classify(es[i+1], value, p.Index(i+1)); oc.verdict == Rejected {
			return oc
		}
	}
	return outcome{verdict: Coercible, shape: shapeFlat}
}

func (e *engine) classifySet(v any, d Descriptor, p Path) outcome {
	elem := *d.elem
	if s, ok := v.(*Set); ok {
		verdict := Exact
		for i, el := range s.Elems() {
			oc := e.classify(el, elem, p.Index(i))
			switch oc.verdict {
			case Rejected:
				return oc
			case Coercible:
				verdict = Coercible
			}
		}
		return outcome{verdict: verdict}
	}
	if es, ok := iterableElems(v); ok {
		for i, el := range es {
			if oc := e.classify(el, elem, p.Index(i)); oc.verdict == Rejected {
				return oc
			}
		}
		return outcome{verdict: Coercible}
	}
	if v == nil {
		return rejection(rejectedAt(p, CodeInvalidType, d, v))
	}
	if oc := e.classify(v, elem, p); oc.verdict == Rejected {
		return oc
	}
	return outcome{verdict: Coercible}
}

func (e *engine) classifyUnion(v any, d Descriptor, p Path) outcome {
	coercibleAlt := -1
	reasons := make([]string, 0, len(d.items))
	for i := range d.items {
		oc := e.classify(v, d.items[i], p.Alternative(i))
		switch oc.verdict {
		case Exact:
			// Exactness beats coercibility regardless of order among exact
			// matches; the first exact alternative in declared order wins.
			return outcome{verdict: Exact, alt: i}
		case Coercible:
			if coercibleAlt < 0 {
				coercibleAlt = i
			}
		case Rejected:
			first := oc.diags[0]
			reasons = append(reasons, d.items[i].String()+": "+first.Code)
		}
	}
	if coercibleAlt >= 0 {
		return outcome{verdict: Coercible, alt: coercibleAlt}
	}
	diag := DiagnosticAt(p, CodeUnionMismatch, d, v)
	diag.Params = map[string]any{"alternatives": reasons}
	return rejection(Diagnostics{diag})
}

// ---- value extraction helpers ----

// intValue extracts a signed integer from any Go integer kind. Booleans and
// string kinds never qualify.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k == reflect.Float32 || k == reflect.Float64 {
		return rv.Float(), true
	}
	return 0, false
}

// stringValue accepts string and named string kinds (json.Number decodes
// this way), so numeric text flows through the same trial-parse path no
// matter which decoder produced it.
func stringValue(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// stringify is the textual rendering used by the any→string coercion. It is
// deliberately unbounded, unlike Render, because it produces the coerced
// value itself rather than a diagnostic preview.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.String:
		return rv.String()
	default:
		return fmt.Sprint(v)
	}
}

// sliceElems extracts elements from slices and arrays. Strings and named
// string kinds are scalars here, never element sources.
func sliceElems(v any) ([]any, bool) {
	if vs, ok := v.([]any); ok {
		return vs, true
	}
	switch v.(type) {
	case nil, *Map, *Set:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// iterableElems extracts elements from any coercion-eligible iterable:
// slices, arrays, sets, and mappings (which iterate their keys).
func iterableElems(v any) ([]any, bool) {
	if es, ok := sliceElems(v); ok {
		return es, true
	}
	switch t := v.(type) {
	case *Set:
		return t.Elems(), true
	case *Map:
		return t.Keys(), true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map {
		keys, _ := sortedMapPairs(rv)
		return keys, true
	}
	return nil, false
}

// mappingPairs extracts key/value pairs from mapping values. Native Go maps
// are ordered by rendered key so classification and coercion stay
// deterministic.
func mappingPairs(v any) (keys, vals []any, ok bool) {
	if m, isM := v.(*Map); isM {
		return m.Keys(), m.Values(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		keys, vals = sortedMapPairs(rv)
		return keys, vals, true
	}
	return nil, nil, false
}

// allPairs reports whether every element is itself a 2-element slice.
func allPairs(es []any) bool {
	for _, el := range es {
		kv, ok := sliceElems(el)
		if !ok || len(kv) != 2 {
			return false
		}
	}
	return true
}
