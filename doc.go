// Package skemac compiles JSON-Schema-like documents, including conditional
// (if/then/else), compositional (allOf/anyOf/oneOf/not) and multi-type rules,
// into reusable validators.
//
// The root package carries only the shared surface:
//
// - A stable error model via Issues (JSON Pointer, code, keyword, category, message)
// - CompileError with the ErrMissingType / ErrUnsupportedType sentinels
// - JSON token Sources with duplicate-key/depth/size enforcement and DecodeFrom
// - The Tracer and MessageResolver collaborators
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - The schema model lives in jsonschema/, the compiler in compiler/, and the CLI under cmd/skemac.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := jsonschema.Parse(schemaJSON)
//	v, err := compiler.Compile(s)
//	res := v.Check(ctx, value)
//	err = v.ValidateFrom(ctx, skemac.JSONBytes(data))
package skemac
