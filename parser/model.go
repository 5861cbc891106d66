package parser

import (
	"github.com/erraggy/swaggen/discovery"
)

// SpecDefinition is the typed, parsed form of one source document.
//
// A definition document may declare any mix of operations, schemas and
// parameters. Action and model documents are normalized into the same shape:
// an action document declares exactly one operation, a model document
// declares exactly one schema named after the file, and an info document
// only carries Info.
type SpecDefinition struct {
	// ID is the document identifier, e.g. "petstore/actions/createPet".
	ID string
	// Spec is the identifier of the specification the document belongs to.
	// It is empty for the root info document.
	Spec string
	// Path is the source path relative to the source root, slash-separated.
	Path string
	// Kind is the layout role of the document.
	Kind discovery.Kind

	Info       *Info
	Operations []*Operation
	Schemas    map[string]*Schema
	Parameters map[string]*Parameter

	// References lists every reference token written in the document,
	// in source order.
	References []Reference

	// SourceMap maps JSON paths in the document to source positions.
	SourceMap *SourceMap
	// Extra holds top-level x-* extensions.
	Extra map[string]any
}

// SchemaPath returns the JSON path at which the named schema is declared.
func (d *SpecDefinition) SchemaPath(name string) string {
	if d.Kind == discovery.KindModel {
		return "$"
	}
	return buildChildPath("$.schemas", name)
}

// ParameterPath returns the JSON path at which the named parameter is declared.
func (d *SpecDefinition) ParameterPath(name string) string {
	return buildChildPath("$.parameters", name)
}

// OperationPath returns the JSON path of the operation at index i.
func (d *SpecDefinition) OperationPath(i int) string {
	if d.Kind == discovery.KindAction {
		return "$"
	}
	return indexPath("$.operations", i)
}

// Location returns the source location of a JSON path in the document.
func (d *SpecDefinition) Location(path string) SourceLocation {
	loc := d.SourceMap.Nearest(path)
	if loc.File == "" {
		loc.File = d.Path
	}
	return loc
}

// Info is the descriptive header of a specification.
type Info struct {
	Title          string   `yaml:"title,omitempty" json:"title"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Version        string   `yaml:"version,omitempty" json:"version"`
	TermsOfService string   `yaml:"termsOfService,omitempty" json:"termsOfService,omitempty"`
	Contact        *Contact `yaml:"contact,omitempty" json:"contact,omitempty"`
	License        *License `yaml:"license,omitempty" json:"license,omitempty"`
	// Profiles are build profile labels used to filter specifications.
	Profiles []string `yaml:"profiles,omitempty" json:"-"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Contact information for the exposed API.
type Contact struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// License information for the exposed API.
type License struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Operation is one callable action of a service.
type Operation struct {
	Name        string       `yaml:"name,omitempty"`
	Method      string       `yaml:"method,omitempty"`
	Path        string       `yaml:"path,omitempty"`
	Summary     string       `yaml:"summary,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Tags        []string     `yaml:"tags,omitempty"`
	Consumes    []string     `yaml:"consumes,omitempty"`
	Produces    []string     `yaml:"produces,omitempty"`
	Deprecated  bool         `yaml:"deprecated,omitempty"`
	Parameters  []*Parameter `yaml:"parameters,omitempty"`
	// Request describes the JSON body of the operation.
	Request *Request `yaml:"request,omitempty"`
	// Response is shorthand for Responses["200"].
	Response  *Response            `yaml:"response,omitempty"`
	Responses map[string]*Response `yaml:"responses,omitempty"`
	// Requires lists operation tokens that must be resolvable alongside this one.
	Requires []string `yaml:"requires,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline"`

	// Location is where the operation is declared.
	Location SourceLocation `yaml:"-"`
}

// Request describes an operation body.
type Request struct {
	// Name is the body parameter name. Defaults to "<operation>Request".
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Required defaults to true.
	Required *bool `yaml:"required,omitempty"`
	// Model is a schema reference token. Mutually exclusive with Schema.
	Model  string  `yaml:"model,omitempty"`
	Schema *Schema `yaml:"schema,omitempty"`
}

// Response describes one operation response.
type Response struct {
	// Name is used when an inline schema is relocated into definitions.
	// The default for the success response is "<operation>Result".
	Name        string             `yaml:"name,omitempty" json:"-"`
	Description string             `yaml:"description,omitempty" json:"description"`
	Model       string             `yaml:"model,omitempty" json:"-"`
	Schema      *Schema            `yaml:"schema,omitempty" json:"schema,omitempty"`
	Headers     map[string]*Header `yaml:"headers,omitempty" json:"headers,omitempty"`
	Examples    map[string]any     `yaml:"examples,omitempty" json:"examples,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`

	// Defaulted is set when the response was synthesized because the
	// operation declared none.
	Defaulted bool `yaml:"-" json:"-"`
	// SourcePath is the JSON path of the response in its document.
	SourcePath string `yaml:"-" json:"-"`
}

// Header describes a response header.
type Header struct {
	Description      string  `yaml:"description,omitempty" json:"description,omitempty"`
	Type             string  `yaml:"type" json:"type"`
	Format           string  `yaml:"format,omitempty" json:"format,omitempty"`
	Items            *Schema `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string  `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any     `yaml:"default,omitempty" json:"default,omitempty"`
	Enum             []any   `yaml:"enum,omitempty" json:"enum,omitempty"`
	Pattern          string  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Parameter is a Swagger 2.0 parameter object, optionally a $ref to a
// reusable parameter.
type Parameter struct {
	Ref              string   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name             string   `yaml:"name,omitempty" json:"name,omitempty"`
	In               string   `yaml:"in,omitempty" json:"in,omitempty"`
	Description      string   `yaml:"description,omitempty" json:"description,omitempty"`
	Required         bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Schema           *Schema  `yaml:"schema,omitempty" json:"schema,omitempty"`
	Type             string   `yaml:"type,omitempty" json:"type,omitempty"`
	Format           string   `yaml:"format,omitempty" json:"format,omitempty"`
	AllowEmptyValue  bool     `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Items            *Schema  `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string   `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any      `yaml:"default,omitempty" json:"default,omitempty"`
	Maximum          *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	Minimum          *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	MaxLength        *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength        *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Pattern          string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Enum             []any    `yaml:"enum,omitempty" json:"enum,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Schema is a Swagger 2.0 schema object.
type Schema struct {
	Ref         string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	Enum        []any  `yaml:"enum,omitempty" json:"enum,omitempty"`

	MultipleOf       *float64 `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`
	Maximum          *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMaximum bool     `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`
	Minimum          *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	ExclusiveMinimum bool     `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`
	MaxLength        *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength        *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Pattern          string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	Items       *Schema `yaml:"items,omitempty" json:"items,omitempty"`
	MaxItems    *int    `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	MinItems    *int    `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	UniqueItems bool    `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	Properties           map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	AdditionalProperties *SchemaOrBool      `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`
	Required             []string           `yaml:"required,omitempty" json:"required,omitempty"`
	MaxProperties        *int               `yaml:"maxProperties,omitempty" json:"maxProperties,omitempty"`
	MinProperties        *int               `yaml:"minProperties,omitempty" json:"minProperties,omitempty"`

	AllOf         []*Schema     `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	Discriminator string        `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	ReadOnly      bool          `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	XML           *XML          `yaml:"xml,omitempty" json:"xml,omitempty"`
	ExternalDocs  *ExternalDocs `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	Example       any           `yaml:"example,omitempty" json:"example,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// XML describes the XML representation of a property.
type XML struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Attribute bool   `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Wrapped   bool   `yaml:"wrapped,omitempty" json:"wrapped,omitempty"`
}

// ExternalDocs points at additional documentation.
type ExternalDocs struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	URL         string `yaml:"url" json:"url"`
}

// SchemaOrBool holds additionalProperties, which is either a schema or a
// boolean.
type SchemaOrBool struct {
	Schema  *Schema
	Allowed bool
}

// ReferenceKind is the declaration kind a reference token must resolve to.
type ReferenceKind int

const (
	// RefSchema targets a schema declaration.
	RefSchema ReferenceKind = iota
	// RefParameter targets a reusable parameter declaration.
	RefParameter
	// RefOperation targets an operation declaration.
	RefOperation
)

// String returns the reference kind's name.
func (k ReferenceKind) String() string {
	switch k {
	case RefSchema:
		return "schema"
	case RefParameter:
		return "parameter"
	case RefOperation:
		return "operation"
	default:
		return "unknown"
	}
}

// Reference is one reference token written in a source document.
type Reference struct {
	// Kind is what the token must resolve to.
	Kind ReferenceKind
	// Token is the raw text as written.
	Token string
	// OwnerKind and Owner name the declaration containing the token.
	OwnerKind ReferenceKind
	Owner     string
	// Path is the JSON path of the node holding the token.
	Path string
	// Location is the position of the token in the source.
	Location SourceLocation
	// Compose is set when the reference is reached from its owning schema
	// through allOf members only, or the owner is an alias for the target.
	// Cycles made of composing references cannot be expanded.
	Compose bool
}
