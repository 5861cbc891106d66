package writer

import "github.com/erraggy/swaggen/parser"

// SwaggerVersion is the value of the swagger field of every document.
const SwaggerVersion = "2.0"

// Document is a Swagger 2.0 document.
type Document struct {
	Swagger     string                       `json:"swagger"`
	Info        *parser.Info                 `json:"info"`
	Consumes    []string                     `json:"consumes,omitempty"`
	Produces    []string                     `json:"produces,omitempty"`
	Paths       map[string]*PathItem         `json:"paths"`
	Definitions map[string]*parser.Schema    `json:"definitions,omitempty"`
	Parameters  map[string]*parser.Parameter `json:"parameters,omitempty"`
	Tags        []*Tag                       `json:"tags,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `json:"-"`
}

// PathItem holds the operations of one path.
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Options *Operation `json:"options,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
}

// Operation is a Swagger 2.0 operation object.
type Operation struct {
	Tags        []string                    `json:"tags,omitempty"`
	Summary     string                      `json:"summary,omitempty"`
	Description string                      `json:"description,omitempty"`
	OperationID string                      `json:"operationId,omitempty"`
	Consumes    []string                    `json:"consumes,omitempty"`
	Produces    []string                    `json:"produces,omitempty"`
	Parameters  []*parser.Parameter         `json:"parameters,omitempty"`
	Responses   map[string]*parser.Response `json:"responses"`
	Deprecated  bool                        `json:"deprecated,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `json:"-"`
}

// Tag describes a tag used by operations.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MarshalJSON implements custom JSON marshaling for Document.
// Extensions are appended after the known fields, sorted by key.
func (d *Document) MarshalJSON() ([]byte, error) {
	type Alias Document
	return parser.MarshalWithExtra((*Alias)(d), d.Extra)
}

// MarshalJSON implements custom JSON marshaling for Operation.
func (o *Operation) MarshalJSON() ([]byte, error) {
	type Alias Operation
	return parser.MarshalWithExtra((*Alias)(o), o.Extra)
}

// operation returns the operation stored for method, or nil.
func (p *PathItem) operation(method string) *Operation {
	if slot := p.slot(method); slot != nil {
		return *slot
	}
	return nil
}

// setOperation stores op for method unless the slot is taken or the method
// is unknown. It reports whether op was stored.
func (p *PathItem) setOperation(method string, op *Operation) bool {
	slot := p.slot(method)
	if slot == nil || *slot != nil {
		return false
	}
	*slot = op
	return true
}

func (p *PathItem) slot(method string) **Operation {
	switch method {
	case "get":
		return &p.Get
	case "put":
		return &p.Put
	case "post":
		return &p.Post
	case "delete":
		return &p.Delete
	case "options":
		return &p.Options
	case "head":
		return &p.Head
	case "patch":
		return &p.Patch
	default:
		return nil
	}
}
