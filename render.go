package typefence

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Rendering bounds. Diagnostics must stay safe to log for arbitrarily large
// inputs, so strings are capped, container previews stop after a few
// elements, and nesting stops after a few levels.
const (
	maxRenderLen   = 120
	maxRenderElems = 8
	maxRenderDepth = 3
)

// spewCfg renders opaque values (structs, pointers, channels) without
// invoking their methods, so rendering never runs caller code.
var spewCfg = spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                maxRenderDepth,
	SortKeys:                true,
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Render produces a bounded, human-readable rendering of v for use in
// diagnostics and record formatting.
func Render(v any) string {
	return truncate(render(v, 0), maxRenderLen)
}

// TypeName reports the runtime type name of v the way diagnostics display it.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case *Map:
		return "map"
	case *Set:
		return "set"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func render(v any, depth int) string {
	if v == nil {
		return "null"
	}
	if depth >= maxRenderDepth {
		return "..."
	}
	switch t := v.(type) {
	case string:
		return strconv.Quote(truncate(t, maxRenderLen/2))
	case bool:
		return strconv.FormatBool(t)
	case *Map:
		return renderPairs(t.Keys(), t.Values(), depth)
	case *Set:
		return "set" + renderSeq(t.Elems(), depth)
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
		// Named string kinds (json.Number and friends).
		return strconv.Quote(truncate(rv.String(), maxRenderLen/2))
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		elems := make([]any, 0, min(n, maxRenderElems+1))
		for i := 0; i < n && i <= maxRenderElems; i++ {
			elems = append(elems, rv.Index(i).Interface())
		}
		return renderSliceBounded(elems, n, depth)
	case reflect.Map:
		keys, vals := sortedMapPairs(rv)
		return renderPairs(keys, vals, depth)
	default:
		return strings.TrimSpace(spewCfg.Sprintf("%v", v))
	}
}

func renderSeq(elems []any, depth int) string {
	return renderSliceBounded(elems, len(elems), depth)
}

func renderSliceBounded(elems []any, total int, depth int) string {
	b := &strings.Builder{}
	b.WriteByte('[')
	for i, e := range elems {
		if i == maxRenderElems {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(render(e, depth+1))
	}
	if total > maxRenderElems {
		fmt.Fprintf(b, ", ... (+%d more)", total-maxRenderElems)
	}
	b.WriteByte(']')
	return b.String()
}

func renderPairs(keys, vals []any, depth int) string {
	b := &strings.Builder{}
	b.WriteByte('{')
	for i := range keys {
		if i == maxRenderElems {
			fmt.Fprintf(b, ", ... (+%d more)", len(keys)-maxRenderElems)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(render(keys[i], depth+1))
		b.WriteString(": ")
		b.WriteString(render(vals[i], depth+1))
	}
	b.WriteByte('}')
	return b.String()
}

// sortedMapPairs extracts a native map's pairs ordered by rendered key so
// output is deterministic regardless of Go's map iteration order.
func sortedMapPairs(rv reflect.Value) (keys, vals []any) {
	type kv struct {
		rk string
		k  any
		v  any
	}
	pairs := make([]kv, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		k := it.Key().Interface()
		pairs = append(pairs, kv{rk: fmt.Sprint(k), k: k, v: it.Value().Interface()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].rk < pairs[j].rk })
	keys = make([]any, len(pairs))
	vals = make([]any, len(pairs))
	for i, p := range pairs {
		keys[i] = p.k
		vals[i] = p.v
	}
	return keys, vals
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary.
	cut := n
	for cut > 0 && !utf8StartByte(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("... (+%d bytes)", len(s)-cut)
}

func utf8StartByte(b byte) bool { return b&0xC0 != 0x80 }
