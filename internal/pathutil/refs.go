package pathutil

// Swagger 2.0 reference prefixes
const (
	RefPrefixDefinitions = "#/definitions/"
	RefPrefixParameters  = "#/parameters/"
)

// DefinitionRef builds "#/definitions/{name}".
func DefinitionRef(name string) string {
	return RefPrefixDefinitions + name
}

// ParameterRef builds "#/parameters/{name}".
func ParameterRef(name string) string {
	return RefPrefixParameters + name
}
