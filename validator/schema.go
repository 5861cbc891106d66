package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/swaggen/internal/issues"
	"github.com/erraggy/swaggen/internal/maputil"
	"github.com/erraggy/swaggen/internal/pathutil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
)

var validSchemaTypes = []string{"object", "array", "string", "integer", "number", "boolean", "file"}

func (v *validator) validateDefinitions() {
	for _, name := range maputil.SortedKeys(v.spec.Definitions) {
		origin := v.spec.DefinitionOrigins[name]
		at := withSource(origin.Document, origin.Location)
		s := v.spec.Definitions[name]
		path := issues.FormatPath("definitions", name)
		if s == nil {
			v.addError(path, "definition is empty", at)
			continue
		}
		v.validateSchema(path, s, at)
	}
}

func (v *validator) validateParameters() {
	for _, name := range maputil.SortedKeys(v.spec.Parameters) {
		origin := v.spec.ParameterOrigins[name]
		at := withSource(origin.Document, origin.Location)
		p := v.spec.Parameters[name]
		path := issues.FormatPath("parameters", name)
		if p == nil {
			v.addError(path, "parameter is empty", at)
			continue
		}
		if p.Ref != "" {
			v.addError(path, "a parameters entry cannot be a reference", withField("$ref"), withValue(p.Ref), at)
			continue
		}
		v.validateParameter(path, p, at)
		if p.In == inPath && !p.Required {
			v.addError(path, fmt.Sprintf("path parameter %q must be required", p.Name),
				withField("required"), withValue(p.Required), at)
		}
	}
}

// validateSchema checks s and every schema nested in it.
func (v *validator) validateSchema(path string, s *parser.Schema, at func(*Issue)) {
	pb := pathutil.Get()
	defer pathutil.Put(pb)
	pb.Push(path)
	v.validateSchemaDepth(pb, s, at, 0)
}

func (v *validator) validateSchemaDepth(pb *pathutil.PathBuilder, s *parser.Schema, at func(*Issue), depth int) {
	if s == nil {
		return
	}
	addError := func(msg string, opts ...func(*Issue)) {
		v.addError(pb.String(), msg, append(opts, at)...)
	}
	if depth > maxSchemaNestingDepth {
		addError(fmt.Sprintf("schema nesting exceeds %d levels", maxSchemaNestingDepth))
		return
	}

	if s.Ref != "" {
		name, ok := strings.CutPrefix(s.Ref, pathutil.RefPrefixDefinitions)
		if _, exists := v.spec.Definitions[name]; !ok || !exists {
			addError(fmt.Sprintf("reference %q does not target a definition", s.Ref), withField("$ref"), withValue(s.Ref))
		}
		return
	}

	if s.Type != "" && !slices.Contains(validSchemaTypes, s.Type) {
		addError(fmt.Sprintf("invalid schema type %q", s.Type), withField("type"), withValue(s.Type))
	}
	if s.Type == "array" && s.Items == nil {
		addError("array schema requires items", withField("items"))
	}
	if len(s.AllOf) == 0 {
		for _, req := range s.Required {
			if _, ok := s.Properties[req]; !ok {
				addError(fmt.Sprintf("required property %q is not declared in properties", req),
					withField("required"), withValue(req))
			}
		}
	}
	if s.Discriminator != "" && !slices.Contains(s.Required, s.Discriminator) {
		addError(fmt.Sprintf("discriminator %q must be a required property", s.Discriminator),
			withField("discriminator"), withValue(s.Discriminator))
	}
	if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
		addError("minLength is greater than maxLength", withField("minLength"))
	}
	if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
		addError("minimum is greater than maximum", withField("minimum"))
	}
	if s.MinItems != nil && s.MaxItems != nil && *s.MinItems > *s.MaxItems {
		addError("minItems is greater than maxItems", withField("minItems"))
	}
	if s.MinProperties != nil && s.MaxProperties != nil && *s.MinProperties > *s.MaxProperties {
		addError("minProperties is greater than maxProperties", withField("minProperties"))
	}
	if s.MultipleOf != nil && *s.MultipleOf <= 0 {
		addError("multipleOf must be greater than 0", withField("multipleOf"), withValue(*s.MultipleOf))
	}

	if s.Items != nil {
		pb.Push("items")
		v.validateSchemaDepth(pb, s.Items, at, depth+1)
		pb.Pop()
	}
	for _, name := range maputil.SortedKeys(s.Properties) {
		pb.Push("properties")
		pb.Push(name)
		v.validateSchemaDepth(pb, s.Properties[name], at, depth+1)
		pb.Pop()
		pb.Pop()
	}
	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		pb.Push("additionalProperties")
		v.validateSchemaDepth(pb, s.AdditionalProperties.Schema, at, depth+1)
		pb.Pop()
	}
	for i, member := range s.AllOf {
		pb.Push("allOf")
		pb.PushIndex(i)
		v.validateSchemaDepth(pb, member, at, depth+1)
		pb.Pop()
		pb.Pop()
	}
}

// validateRelocations reports response schemas whose definition name was
// already taken.
func (v *validator) validateRelocations() {
	for _, c := range v.spec.RelocationConflicts {
		i := slices.IndexFunc(v.spec.Operations, func(op *resolver.Operation) bool { return op.Name == c.Operation })
		if i < 0 {
			continue
		}
		op := v.spec.Operations[i]
		origin := v.spec.DefinitionOrigins[c.Name]
		v.addError(issues.FormatPath(opPath(op), "responses", c.Code),
			fmt.Sprintf("response schema name %q is already used by a definition from %s", c.Name, origin.Document),
			withField("name"), withValue(c.Name),
			withOperation(op), withSource(op.Document, c.Location))
	}
}
