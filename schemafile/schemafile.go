// Package schemafile loads TypeDescriptor declarations from YAML documents.
// It is the explicit registration step the engine itself refuses to own:
// descriptors are declared once, loaded into read-only trees, and shared.
//
// A declaration is either a scalar shorthand ("int", "string", ...) or a
// mapping with a "type" discriminator:
//
//	type: map
//	key: string
//	value:
//	  type: union
//	  of: [int, string]
package schemafile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	typefence "github.com/reoring/typefence"
)

// Parse decodes a single descriptor declaration.
func Parse(data []byte) (typefence.Descriptor, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return typefence.Descriptor{}, fmt.Errorf("schemafile: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return typefence.Descriptor{}, fmt.Errorf("schemafile: empty document")
	}
	return fromNode(root.Content[0])
}

// Load reads and parses a declaration file.
func Load(path string) (typefence.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return typefence.Descriptor{}, fmt.Errorf("schemafile: %w", err)
	}
	return Parse(data)
}

func fromNode(n *yaml.Node) (typefence.Descriptor, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarDescriptor(n)
	case yaml.MappingNode:
		return mappingDescriptor(n)
	case yaml.AliasNode:
		// Anchors could smuggle a cycle into a model that must stay acyclic.
		return typefence.Descriptor{}, errAt(n, "aliases are not supported in type declarations")
	default:
		return typefence.Descriptor{}, errAt(n, "expected a type declaration")
	}
}

func scalarDescriptor(n *yaml.Node) (typefence.Descriptor, error) {
	switch strings.ToLower(n.Value) {
	case "int", "integer":
		return typefence.Int(), nil
	case "float", "number":
		return typefence.Float(), nil
	case "string", "str":
		return typefence.String(), nil
	case "bool", "boolean":
		return typefence.Bool(), nil
	case "object":
		return typefence.Object(), nil
	case "any":
		return typefence.Any(), nil
	default:
		return typefence.Descriptor{}, errAt(n, "unknown type %q", n.Value)
	}
}

// allowedKeys lists the structural keys each composite type accepts; anything
// else in the declaration is an authoring mistake worth failing loudly on.
var allowedKeys = map[string][]string{
	"sequence": {"elem"},
	"list":     {"elem"},
	"set":      {"elem"},
	"tuple":    {"items"},
	"map":      {"key", "value"},
	"mapping":  {"key", "value"},
	"union":    {"of"},
}

func mappingDescriptor(n *yaml.Node) (typefence.Descriptor, error) {
	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if _, dup := fields[k.Value]; dup {
			return typefence.Descriptor{}, errAt(k, "duplicate key %q", k.Value)
		}
		fields[k.Value] = n.Content[i+1]
	}
	tn, ok := fields["type"]
	if !ok {
		return typefence.Descriptor{}, errAt(n, "missing \"type\"")
	}
	typ := strings.ToLower(tn.Value)
	if allowed, composite := allowedKeys[typ]; composite {
		for name, fn := range fields {
			if name == "type" || contains(allowed, name) {
				continue
			}
			return typefence.Descriptor{}, errAt(fn, "unknown key %q for type %q", name, typ)
		}
	} else {
		if len(fields) != 1 {
			return typefence.Descriptor{}, errAt(n, "scalar type %q takes no extra keys", typ)
		}
		return scalarDescriptor(tn)
	}

	switch typ {
	case "sequence", "list":
		elem, err := childDescriptor(n, fields, "elem")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.SequenceOf(elem), nil
	case "set":
		elem, err := childDescriptor(n, fields, "elem")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.SetOf(elem), nil
	case "map", "mapping":
		key, err := childDescriptor(n, fields, "key")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		value, err := childDescriptor(n, fields, "value")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.MapOf(key, value), nil
	case "tuple":
		items, err := childList(n, fields, "items")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		return typefence.TupleOf(items...), nil
	case "union":
		alts, err := childList(n, fields, "of")
		if err != nil {
			return typefence.Descriptor{}, err
		}
		if len(alts) == 0 {
			return typefence.Descriptor{}, errAt(fields["of"], "union needs at least one alternative")
		}
		return typefence.UnionOf(alts...), nil
	}
	return typefence.Descriptor{}, errAt(tn, "unknown type %q", tn.Value)
}

func childDescriptor(parent *yaml.Node, fields map[string]*yaml.Node, name string) (typefence.Descriptor, error) {
	fn, ok := fields[name]
	if !ok {
		return typefence.Descriptor{}, errAt(parent, "missing %q", name)
	}
	return fromNode(fn)
}

func childList(parent *yaml.Node, fields map[string]*yaml.Node, name string) ([]typefence.Descriptor, error) {
	fn, ok := fields[name]
	if !ok {
		return nil, errAt(parent, "missing %q", name)
	}
	if fn.Kind != yaml.SequenceNode {
		return nil, errAt(fn, "%q must be a list", name)
	}
	out := make([]typefence.Descriptor, 0, len(fn.Content))
	for _, cn := range fn.Content {
		d, err := fromNode(cn)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func errAt(n *yaml.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("schemafile: %d:%d: %s", n.Line, n.Column, msg)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
