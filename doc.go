// Package typegraph decodes JSON documents into typed, polymorphic object
// graphs.
//
// Objects in a document may carry a schema tag ("Clip.2"), a schema version
// and a reference-id. Tagged objects are built by constructors registered in
// a Registry; objects written in a newer version than any constructor are
// downgraded through registered upgrade-inverse steps before construction.
// An object holding only a reference-id is a marker and resolves to the
// object defined with that id, so shared and cyclic structure survives
// decoding as one *Ref handle.
//
// Design policy:
//   - Keep public APIs in the root package; token enforcement lives under internal/.
//   - JSON drivers are pluggable (source/json, source/gojson) via SetJSONDriver.
//   - Errors are *Error values with a stable Code, a JSON Pointer path and a location.
//
// Typical usage:
//
//	reg := typegraph.NewRegistry()
//	reg.MustRegister("Clip", 1, newClip)
//	v, err := typegraph.DecodeFile("cut.otio", typegraph.DecodeOpt{Registry: reg})
//	if typegraph.IsCode(err, typegraph.CodeDanglingReference) {
//		// ...
//	}
//
// The timeline package registers a small editorial timeline vocabulary and is
// what the typegraph command decodes with.
package typegraph
