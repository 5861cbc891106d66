// Package validator checks resolved specifications against the Swagger 2.0
// rules that the definition grammar cannot enforce on its own.
//
// Validation runs on a [resolver.ResolvedSpec], after references have been
// materialized, so every rule sees the specification exactly as it will be
// written.
//
// # Validation Levels
//
// The validator provides two severity levels for issues:
//
//   - SeverityError: violations that fail the specification
//   - SeverityWarning: recommendations that never fail the specification
//
// Warnings can be suppressed with [WithIncludeWarnings]. Strict mode
// ([WithStrictMode]) additionally warns about non-standard status codes.
//
// # Validation Rules
//
// Info:
//   - The declared version constraint must be compatible with the run version
//   - Info blocks of different documents must not disagree
//   - Contact and license URLs and the contact email must be well-formed
//
// Operations:
//   - Method and path pairs and operation names must be unique
//   - Methods must be Swagger 2.0 methods and paths must start with "/"
//   - Path templates must be well-formed and every template variable must be
//     declared as a required path parameter
//   - At most one body parameter, and never a body together with formData
//   - Status codes must be "default" or 100-599, media types RFC 2045/2046
//
// Schemas:
//   - Types are drawn from object, array, string, integer, number, boolean and file
//   - Arrays need items, and required names must be declared properties
//   - Every $ref targets an existing definition or parameter
//
// # Example
//
//	result := validator.Validate(spec, "2.3.0")
//	if err := result.Err(); err != nil {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
package validator
