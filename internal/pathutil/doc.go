// Package pathutil provides path helpers for validation issues, emitted
// references and output files.
//
// [PathBuilder] tracks the dotted issue path while the validator descends
// into nested schemas. Builders are pooled:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("definitions.Pet")
//	path.Push("allOf")
//	path.PushIndex(0)  // "definitions.Pet.allOf[0]"
//
// [TemplateParams] lists the {name} parameters of a path template.
//
// Emitted Swagger 2.0 documents point at their own sections:
//
//	ref := pathutil.DefinitionRef("Pet")      // "#/definitions/Pet"
//	ref := pathutil.ParameterRef("PageSize")  // "#/parameters/PageSize"
//
// [SanitizeOutputPath] keeps artifact paths inside the output root and
// refuses to write through symlinks.
package pathutil
