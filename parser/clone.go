package parser

import (
	"maps"
	"slices"
)

// DeepCopy returns an independent copy of the schema tree.
func (s *Schema) DeepCopy() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Default = deepCopyJSONValue(s.Default)
	out.Example = deepCopyJSONValue(s.Example)
	out.Enum = deepCopyEnumSlice(s.Enum)
	out.MultipleOf = copyPtr(s.MultipleOf)
	out.Maximum = copyPtr(s.Maximum)
	out.Minimum = copyPtr(s.Minimum)
	out.MaxLength = copyPtr(s.MaxLength)
	out.MinLength = copyPtr(s.MinLength)
	out.MaxItems = copyPtr(s.MaxItems)
	out.MinItems = copyPtr(s.MinItems)
	out.MaxProperties = copyPtr(s.MaxProperties)
	out.MinProperties = copyPtr(s.MinProperties)
	out.Items = s.Items.DeepCopy()
	out.Required = slices.Clone(s.Required)
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v.DeepCopy()
		}
	}
	if s.AdditionalProperties != nil {
		out.AdditionalProperties = &SchemaOrBool{
			Schema:  s.AdditionalProperties.Schema.DeepCopy(),
			Allowed: s.AdditionalProperties.Allowed,
		}
	}
	if s.AllOf != nil {
		out.AllOf = make([]*Schema, len(s.AllOf))
		for i, v := range s.AllOf {
			out.AllOf[i] = v.DeepCopy()
		}
	}
	out.XML = copyPtr(s.XML)
	out.ExternalDocs = copyPtr(s.ExternalDocs)
	out.Extra = deepCopyExtensions(s.Extra)
	return &out
}

// DeepCopy returns an independent copy of the parameter.
func (p *Parameter) DeepCopy() *Parameter {
	if p == nil {
		return nil
	}
	out := *p
	out.Schema = p.Schema.DeepCopy()
	out.Items = p.Items.DeepCopy()
	out.Default = deepCopyJSONValue(p.Default)
	out.Enum = deepCopyEnumSlice(p.Enum)
	out.Maximum = copyPtr(p.Maximum)
	out.Minimum = copyPtr(p.Minimum)
	out.MaxLength = copyPtr(p.MaxLength)
	out.MinLength = copyPtr(p.MinLength)
	out.Extra = deepCopyExtensions(p.Extra)
	return &out
}

// DeepCopy returns an independent copy of the header.
func (h *Header) DeepCopy() *Header {
	if h == nil {
		return nil
	}
	out := *h
	out.Items = h.Items.DeepCopy()
	out.Default = deepCopyJSONValue(h.Default)
	out.Enum = deepCopyEnumSlice(h.Enum)
	out.Extra = deepCopyExtensions(h.Extra)
	return &out
}

// DeepCopy returns an independent copy of the response.
func (r *Response) DeepCopy() *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Schema = r.Schema.DeepCopy()
	if r.Headers != nil {
		out.Headers = make(map[string]*Header, len(r.Headers))
		for k, v := range r.Headers {
			out.Headers[k] = v.DeepCopy()
		}
	}
	out.Examples = deepCopyExtensions(r.Examples)
	out.Extra = deepCopyExtensions(r.Extra)
	return &out
}

// DeepCopy returns an independent copy of the info header.
func (i *Info) DeepCopy() *Info {
	if i == nil {
		return nil
	}
	out := *i
	out.Contact = copyPtr(i.Contact)
	out.License = copyPtr(i.License)
	out.Profiles = slices.Clone(i.Profiles)
	out.Extra = deepCopyExtensions(i.Extra)
	return &out
}

// DeepCopy returns an independent copy of the operation.
func (op *Operation) DeepCopy() *Operation {
	if op == nil {
		return nil
	}
	out := *op
	out.Tags = slices.Clone(op.Tags)
	out.Consumes = slices.Clone(op.Consumes)
	out.Produces = slices.Clone(op.Produces)
	out.Requires = slices.Clone(op.Requires)
	if op.Parameters != nil {
		out.Parameters = make([]*Parameter, len(op.Parameters))
		for i, p := range op.Parameters {
			out.Parameters[i] = p.DeepCopy()
		}
	}
	if op.Request != nil {
		req := *op.Request
		req.Required = copyPtr(op.Request.Required)
		req.Schema = op.Request.Schema.DeepCopy()
		out.Request = &req
	}
	out.Response = op.Response.DeepCopy()
	if op.Responses != nil {
		out.Responses = make(map[string]*Response, len(op.Responses))
		for code, r := range op.Responses {
			out.Responses[code] = r.DeepCopy()
		}
	}
	out.Extra = deepCopyExtensions(op.Extra)
	return &out
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// deepCopyJSONValue copies a JSON-compatible value.
func deepCopyJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = deepCopyJSONValue(child)
		}
		return out
	case []any:
		return deepCopyEnumSlice(t)
	default:
		return v
	}
}

func deepCopyEnumSlice(v []any) []any {
	if v == nil {
		return nil
	}
	out := make([]any, len(v))
	for i, child := range v {
		out[i] = deepCopyJSONValue(child)
	}
	return out
}

func deepCopyExtensions(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	out := maps.Clone(v)
	for k, child := range out {
		out[k] = deepCopyJSONValue(child)
	}
	return out
}
