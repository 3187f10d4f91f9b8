package typefence

// coerce classifies v at the current node and executes the recorded decision.
// Classification is a pure function of (value, descriptor, options), so the
// verdict the Coercer sees is always the one the Matcher produced; the trial
// parse result, the selected union alternative, and the accepted map shape
// are taken from the outcome rather than re-derived.
func (e *engine) coerce(v any, d Descriptor, p Path) (any, Diagnostics) {
	oc := e.classify(v, d, p)
	switch oc.verdict {
	case Exact:
		return v, nil
	case Rejected:
		return nil, oc.diags
	}
	switch d.kind {
	case KindInt, KindFloat, KindString, KindBool:
		return oc.parsed, nil
	case KindSequence:
		return e.coerceSequence(v, d, p)
	case KindTuple:
		return e.coerceTuple(v, d, p)
	case KindMap:
		return e.coerceMap(v, d, p, oc.shape)
	case KindSet:
		return e.coerceSet(v, d, p)
	case KindUnion:
		// Execute the alternative the Matcher selected, not a re-search.
		return e.coerce(v, d.items[oc.alt], p.Alternative(oc.alt))
	default:
		return v, nil
	}
}

// sourceElems normalizes a coercion source into its element list, wrapping a
// lone scalar into a single-element sequence.
func sourceElems(v any) []any {
	if es, ok := iterableElems(v); ok {
		return es
	}
	return []any{v}
}

func (e *engine) coerceSequence(v any, d Descriptor, p Path) (any, Diagnostics) {
	elem := *d.elem
	es := sourceElems(v)
	out := make([]any, len(es))
	for i := range es {
		cv, diags := e.coerce(es[i], elem, p.Index(i))
		if diags != nil {
			return nil, diags
		}
		out[i] = cv
	}
	return out, nil
}

func (e *engine) coerceTuple(v any, d Descriptor, p Path) (any, Diagnostics) {
	es := sourceElems(v) // arity already verified during classification
	out := make([]any, len(es))
	for i := range es {
		cv, diags := e.coerce(es[i], d.items[i], p.Index(i))
		if diags != nil {
			return nil, diags
		}
		out[i] = cv
	}
	return out, nil
}

func (e *engine) coerceMap(v any, d Descriptor, p Path, shape mapShape) (any, Diagnostics) {
	key, value := *d.key, *d.value
	out := NewMap()
	switch shape {
	case shapeMapping:
		keys, vals, _ := mappingPairs(v)
		for i := range keys {
			seg := p.Key(stringify(keys[i]))
			ck, diags := e.coerce(keys[i], key, seg)
			if diags != nil {
				return nil, diags
			}
			cv, diags := e.coerce(vals[i], value, seg)
			if diags != nil {
				return nil, diags
			}
			out.Set(ck, cv)
		}
	case shapePairs:
		es, _ := sliceElems(v)
		for i, pair := range es {
			kv, _ := sliceElems(pair)
			ck, diags := e.coerce(kv[0], key, p.Index(i).Index(0))
			if diags != nil {
				return nil, diags
			}
			cv, diags := e.coerce(kv[1], value, p.Index(i).Index(1))
			if diags != nil {
				return nil, diags
			}
			out.Set(ck, cv)
		}
	case shapeFlat:
		es, _ := sliceElems(v)
		for i := 0; i < len(es); i += 2 {
			ck, diags := e.coerce(es[i], key, p.Index(i))
			if diags != nil {
				return nil, diags
			}
			cv, diags := e.coerce(es[i+1], value, p.Index(i+1))
			if diags != nil {
				return nil, diags
			}
			out.Set(ck, cv)
		}
	}
	return out, nil
}

func (e *engine) coerceSet(v any, d Descriptor, p Path) (any, Diagnostics) {
	elem := *d.elem
	es := sourceElems(v)
	out := NewSet()
	for i := range es {
		cv, diags := e.coerce(es[i], elem, p.Index(i))
		if diags != nil {
			return nil, diags
		}
		// Deduplication happens after coercion: "1" and 1 collapse once both
		// have been coerced to the same integer.
		out.Add(cv)
	}
	return out, nil
}
