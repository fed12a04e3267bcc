// Package snapshot provides snapshot-based assertions for test suites whose
// outputs are partially non-deterministic (timestamps, generated identifiers,
// request metadata).
//
// A Session records a golden JSON representation of named test outputs and, on
// later runs, normalizes newly observed outputs through an ordered pipeline of
// transformers before comparing them against the golden copy.
//
// Quick start:
//
//	sess, err := snapshot.NewSession(filepath.Join("testdata", t.Name()), t.Name())
//	sess.AddTransformer(snapshot.KeyValue("RequestId"))
//	sess.Match("create-response", response)
//	results, err := sess.Assert(snapshot.WithSkipPaths("$..LastModified"))
//
// Transformers either rewrite matched values in the tree directly, or register
// a deferred reference replacement: the first occurrence of a raw value mints a
// stable placeholder token (e.g. <resource:1>) that is substituted for every
// occurrence of that value in the serialized snapshot text, so recurring
// non-deterministic values stay comparable across positions.
//
// Set DEBUG_SNAPSHOT=1 to enable debug logging of replacements and skip-path
// resolution.
package snapshot
