package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/swaggen/internal/httputil"
	"github.com/erraggy/swaggen/internal/issues"
	"github.com/erraggy/swaggen/internal/maputil"
	"github.com/erraggy/swaggen/internal/pathutil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
)

// Swagger 2.0 parameter locations
const (
	inQuery    = "query"
	inHeader   = "header"
	inPath     = "path"
	inFormData = "formData"
	inBody     = "body"
)

var validLocations = []string{inQuery, inHeader, inPath, inFormData, inBody}

// Types allowed for non-body parameters and headers
var validParameterTypes = []string{"string", "number", "integer", "boolean", "array", "file"}

var validCollectionFormats = []string{"csv", "ssv", "tsv", "pipes", "multi"}

// opPath returns the artifact path of op, e.g. "paths./pets.get".
func opPath(op *resolver.Operation) string {
	return issues.FormatPath("paths", op.Path, op.Method)
}

func (v *validator) validateOperations() {
	byRoute := make(map[string]*resolver.Operation, len(v.spec.Operations))
	byName := make(map[string]*resolver.Operation, len(v.spec.Operations))

	for _, op := range v.spec.Operations {
		at := withOperation(op)
		path := opPath(op)

		if !httputil.IsMethod(op.Method) {
			v.addError(path, fmt.Sprintf("unknown HTTP method %q", op.Method),
				withField("method"), withValue(op.Method), at)
		}

		route := op.Method + " " + op.Path
		if prev, ok := byRoute[route]; ok {
			v.addError(path, fmt.Sprintf("duplicate operation for %s %s (also declared by %s in %s)",
				strings.ToUpper(op.Method), op.Path, prev.Name, prev.Document), at)
		} else {
			byRoute[route] = op
		}
		if prev, ok := byName[op.Name]; ok {
			v.addError(path+".operationId", fmt.Sprintf("duplicate operation name %q (also declared in %s)", op.Name, prev.Document),
				withField("operationId"), withValue(op.Name), at)
		} else {
			byName[op.Name] = op
		}

		v.validatePath(op)
		v.validateOperationParameters(op)
		v.validateResponses(op)
		v.validateMediaTypes(path, "consumes", op.Consumes, at)
		v.validateMediaTypes(path, "produces", op.Produces, at)

		if op.Description == "" {
			v.addWarning(path, "operation has no description", withField("description"), at)
		}
	}
}

// validatePath checks the path template and its trailing slash.
func (v *validator) validatePath(op *resolver.Operation) {
	at := withOperation(op)
	if !strings.HasPrefix(op.Path, "/") {
		v.addError(opPath(op), fmt.Sprintf("path %q must start with \"/\"", op.Path),
			withField("path"), withValue(op.Path), at)
		return
	}
	if err := validatePathTemplate(op.Path); err != nil {
		v.addError(opPath(op), fmt.Sprintf("invalid path template %q: %s", op.Path, err),
			withField("path"), withValue(op.Path), at)
	}
	if len(op.Path) > 1 && strings.HasSuffix(op.Path, "/") {
		v.addWarning(opPath(op), "path has a trailing slash", withField("path"), withValue(op.Path), at)
	}
}

// effectiveParameter returns the parameter p stands for: p itself, or the
// parameters entry it links to. ok is false for a link to a missing entry.
func (v *validator) effectiveParameter(p *parser.Parameter) (*parser.Parameter, bool) {
	if p.Ref == "" {
		return p, true
	}
	name, ok := strings.CutPrefix(p.Ref, pathutil.RefPrefixParameters)
	if !ok {
		return nil, false
	}
	target, ok := v.spec.Parameters[name]
	return target, ok && target != nil
}

func (v *validator) validateOperationParameters(op *resolver.Operation) {
	at := withOperation(op)
	base := opPath(op)

	type key struct{ name, in string }
	seen := make(map[key]bool, len(op.Parameters))
	declaredPath := make(map[string]bool)
	var bodies, forms int

	for i, raw := range op.Parameters {
		path := base + ".parameters[" + strconv.Itoa(i) + "]"
		if raw == nil {
			v.addError(path, "parameter is empty", at)
			continue
		}
		p, ok := v.effectiveParameter(raw)
		if !ok {
			v.addError(path, fmt.Sprintf("reference %q does not target a declared parameter", raw.Ref),
				withField("$ref"), withValue(raw.Ref), at)
			continue
		}
		if raw.Ref == "" {
			v.validateParameter(path, p, at)
		}

		k := key{p.Name, p.In}
		if seen[k] {
			v.addError(path, fmt.Sprintf("duplicate parameter %q in %s", p.Name, p.In),
				withField("name"), withValue(p.Name), at)
		}
		seen[k] = true

		switch p.In {
		case inBody:
			bodies++
		case inFormData:
			forms++
		case inPath:
			declaredPath[p.Name] = true
			if !p.Required {
				v.addError(path, fmt.Sprintf("path parameter %q must be required", p.Name),
					withField("required"), withValue(p.Required), at)
			}
		}
		if p.In == inBody && slices.Contains(httputil.MethodsWithoutBody, op.Method) {
			v.addWarning(path, fmt.Sprintf("%s operation has a request body", strings.ToUpper(op.Method)),
				withField("in"), at)
		}
	}

	if bodies > 1 {
		v.addError(base+".parameters", fmt.Sprintf("operation has %d body parameters; at most one is allowed", bodies), at)
	}
	if bodies > 0 && forms > 0 {
		v.addError(base+".parameters", "operation mixes body and formData parameters", at)
	}

	template := extractPathParameters(op.Path)
	for _, name := range maputil.SortedKeys(template) {
		if !declaredPath[name] {
			v.addError(base+".parameters", fmt.Sprintf("path template variable %q is not declared as a path parameter", name),
				withField("path"), withValue(name), at)
		}
	}
	for _, name := range maputil.SortedKeys(declaredPath) {
		if !template[name] {
			v.addError(base+".parameters", fmt.Sprintf("path parameter %q does not appear in path %q", name, op.Path),
				withField("name"), withValue(name), at)
		}
	}
}

// validateParameter checks a parameter object in isolation.
func (v *validator) validateParameter(path string, p *parser.Parameter, at func(*Issue)) {
	if p.Name == "" {
		v.addError(path, "parameter name is required", withField("name"), at)
	}
	if !slices.Contains(validLocations, p.In) {
		v.addError(path, fmt.Sprintf("invalid parameter location %q", p.In),
			withField("in"), withValue(p.In), at)
		return
	}

	if p.In == inBody {
		if p.Schema == nil {
			v.addError(path, "body parameter requires a schema", withField("schema"), at)
			return
		}
		v.validateSchema(path+".schema", p.Schema, at)
		return
	}

	if p.Schema != nil {
		v.addError(path, fmt.Sprintf("%s parameter cannot have a schema", p.In), withField("schema"), at)
	}
	switch {
	case p.Type == "":
		v.addError(path, fmt.Sprintf("%s parameter requires a type", p.In), withField("type"), at)
	case !slices.Contains(validParameterTypes, p.Type):
		v.addError(path, fmt.Sprintf("invalid parameter type %q", p.Type), withField("type"), withValue(p.Type), at)
	case p.Type == "file" && p.In != inFormData:
		v.addError(path, "file parameters must be in formData", withField("type"), withValue(p.Type), at)
	case p.Type == "array":
		if p.Items == nil {
			v.addError(path, "array parameter requires items", withField("items"), at)
		} else {
			v.validateSchema(path+".items", p.Items, at)
		}
	}
	if p.CollectionFormat != "" {
		switch {
		case !slices.Contains(validCollectionFormats, p.CollectionFormat):
			v.addError(path, fmt.Sprintf("invalid collectionFormat %q", p.CollectionFormat),
				withField("collectionFormat"), withValue(p.CollectionFormat), at)
		case p.CollectionFormat == "multi" && p.In != inQuery && p.In != inFormData:
			v.addError(path, "collectionFormat multi is only valid for query and formData parameters",
				withField("collectionFormat"), withValue(p.CollectionFormat), at)
		}
	}
	if p.AllowEmptyValue && p.In != inQuery && p.In != inFormData {
		v.addError(path, "allowEmptyValue is only valid for query and formData parameters",
			withField("allowEmptyValue"), at)
	}
	if p.MinLength != nil && p.MaxLength != nil && *p.MinLength > *p.MaxLength {
		v.addError(path, "minLength is greater than maxLength", withField("minLength"), at)
	}
	if p.Minimum != nil && p.Maximum != nil && *p.Minimum > *p.Maximum {
		v.addError(path, "minimum is greater than maximum", withField("minimum"), at)
	}
}

func (v *validator) validateResponses(op *resolver.Operation) {
	at := withOperation(op)
	base := opPath(op) + ".responses"
	if len(op.Responses) == 0 {
		v.addError(base, "operation has no responses", at)
		return
	}

	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	var success bool
	for _, code := range codes {
		r := op.Responses[code]
		path := issues.FormatPath(base, code)
		if !httputil.ValidateStatusCode(code) {
			v.addError(path, fmt.Sprintf("invalid status code %q", code), withValue(code), at)
			continue
		}
		if v.cfg.strictMode && code != "default" && !httputil.IsStandardStatusCode(code) {
			v.addWarning(path, fmt.Sprintf("non-standard status code %q", code), withValue(code), at)
		}
		success = success || httputil.IsSuccessCode(code)
		if r == nil {
			v.addError(path, "response is empty", at)
			continue
		}
		if r.Defaulted {
			v.addWarning(path, "operation declares no responses; a default response was added", at)
		}
		if r.Description == "" {
			v.addWarning(path, "response has no description", withField("description"), at)
		}
		if r.Schema != nil {
			v.validateSchema(path+".schema", r.Schema, at)
		}
		for _, name := range maputil.SortedKeys(r.Headers) {
			h := r.Headers[name]
			hp := issues.FormatPath(path, "headers", name)
			if h == nil {
				continue
			}
			switch {
			case h.Type == "":
				v.addError(hp, "header requires a type", withField("type"), at)
			case !slices.Contains(validParameterTypes, h.Type) || h.Type == "file":
				v.addError(hp, fmt.Sprintf("invalid header type %q", h.Type), withField("type"), withValue(h.Type), at)
			case h.Type == "array" && h.Items == nil:
				v.addError(hp, "array header requires items", withField("items"), at)
			}
		}
	}
	if !success {
		v.addWarning(base, "operation has no success response", at)
	}
}

func (v *validator) validateMediaTypes(path, field string, types []string, at func(*Issue)) {
	for i, mt := range types {
		if !httputil.IsValidMediaType(mt) {
			v.addError(fmt.Sprintf("%s.%s[%d]", path, field, i), fmt.Sprintf("invalid media type %q", mt),
				withField(field), withValue(mt), at)
		}
	}
}

