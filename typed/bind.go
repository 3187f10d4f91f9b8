package typed

import (
	"fmt"
	"reflect"
	"strings"

	typefence "github.com/reoring/typefence"
)

// FromStruct derives a record Type from S's exported fields. This is the
// compile-time registration step: the engine never inspects declarations
// itself, so reflection stops here and only descriptor trees flow onward.
func FromStruct[S any](opts ...TypeOption) (*Type, error) {
	rt := reflect.TypeOf((*S)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("typed: FromStruct requires a struct type, got %s", rt)
	}
	var fields []Field
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "" || name == "-" {
			continue
		}
		d, err := descriptorFor(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("typed: %s.%s: %w", rt.Name(), sf.Name, err)
		}
		fields = append(fields, Field{Name: name, Type: d})
	}
	return NewType(rt.Name(), fields, opts...)
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's external key.
// Priority: typefence:"name=..." > json tag name > field name; "-" disables
// the field.
func ResolveStructKey(sf reflect.StructField) string {
	if tt := sf.Tag.Get("typefence"); tt != "" {
		for _, p := range strings.Split(tt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

func descriptorFor(t reflect.Type) (typefence.Descriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return typefence.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typefence.Int(), nil
	case reflect.Float32, reflect.Float64:
		return typefence.Float(), nil
	case reflect.String:
		return typefence.String(), nil
	case reflect.Interface:
		return typefence.Any(), nil
	case reflect.Slice, reflect.Array:
		elem, err := descriptorFor(t.Elem())
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.SequenceOf(elem), nil
	case reflect.Map:
		key, err := descriptorFor(t.Key())
		if err != nil {
			return typefence.Descriptor{}, err
		}
		value, err := descriptorFor(t.Elem())
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.MapOf(key, value), nil
	case reflect.Struct, reflect.Pointer:
		// Nested records need their own explicit registration; until then
		// they pass as any-object.
		return typefence.Object(), nil
	default:
		return typefence.Descriptor{}, fmt.Errorf("unsupported kind %s", t.Kind())
	}
}
