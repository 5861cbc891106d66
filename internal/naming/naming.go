package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r)
}

// Title converts an identifier into a title.
// Separators (underscore, hyphen, dot, slash) become single spaces.
// Example: "pet-store/v2" -> "Pet Store V2"
func Title(id string) string {
	words := strings.FieldsFunc(id, isSeparator)
	if len(words) == 0 {
		return ""
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// Qualify returns the output name of a declaration that collides with
// another declaration of the same name: the document ID with slashes turned
// into dots, followed by the name.
// Example: ("petstore/common", "Error") -> "petstore.common.Error"
func Qualify(document, name string) string {
	if document == "" {
		return name
	}
	return strings.ReplaceAll(document, "/", ".") + "." + name
}
