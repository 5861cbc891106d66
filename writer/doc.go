// Package writer renders resolved specifications as Swagger 2.0 documents
// and writes them as JSON and YAML artifacts.
//
// Output is deterministic: struct fields are emitted in a fixed order, map
// keys are sorted, indentation is two spaces and every artifact ends with a
// newline. The YAML form is derived from the JSON bytes, so both formats
// share the same key order.
//
// Artifacts are written atomically. Each file is written to a temporary file
// in the target directory and renamed into place, so a failed or cancelled
// write never leaves a partial artifact behind and an existing artifact is
// either replaced whole or left untouched.
//
// # Example
//
//	doc := writer.Render(spec, "2.3.0")
//	paths, err := writer.Write(ctx, "out", spec.ID, doc, writer.DefaultFormats)
package writer
