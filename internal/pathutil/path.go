package pathutil

import "regexp"

// PathParamRegex matches path template parameters like {petId} and
// captures the name inside the braces.
var PathParamRegex = regexp.MustCompile(`\{([^}]+)\}`)

// TemplateParams returns the parameter names of a path template in order of
// appearance, duplicates included.
func TemplateParams(template string) []string {
	var names []string
	for _, m := range PathParamRegex.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}
