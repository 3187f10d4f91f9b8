package typefence

// Package typefence is a runtime contract-checking engine: given a value and
// a declared TypeDescriptor it decides whether the value conforms, performs a
// best-effort coercion into a conforming value when a deterministic rule
// exists, and otherwise reports a structured, path-carrying Diagnostic.
//
// It provides:
//
// - A closed descriptor model (scalars, sequence, tuple, map, set, union, any)
// - Classify/Coerce/Validate over the single validate(value, descriptor) contract
// - A stable error model via Diagnostics (path segments, code, bounded rendering)
// - JSON ingestion through ParseFrom with byte and depth enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Descriptor construction is a registration concern: collaborators live under
//   typed/, guard/, and schemafile/; the engine only consumes descriptor trees.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	d := typefence.MapOf(typefence.String(), typefence.Int())
//	v, err := typefence.Validate(raw, d)
//	v, err = typefence.ParseFrom(ctx, d, typefence.JSONBytes(data))
