package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePathTemplate(t *testing.T) {
	tests := []struct {
		path string
		err  string
	}{
		{path: "/pets"},
		{path: "/pets/{petId}/owners/{ownerId}"},
		{path: "/pets/{}", err: "empty parameter name"},
		{path: "/pets//x", err: "consecutive slashes"},
		{path: "/pets#x", err: "reserved character '#'"},
		{path: "/pets?x=1", err: "reserved character '?'"},
		{path: "/pets/{a{b}}", err: "nested braces"},
		{path: "/pets/a}", err: "unexpected closing brace"},
		{path: "/pets/{id", err: "unclosed brace"},
		{path: "/pets/{ }", err: "empty parameter name"},
		{path: "/a/{id}/b/{id}", err: "duplicate parameter name 'id'"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validatePathTemplate(tt.path)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.err)
			}
		})
	}
}

func TestExtractPathParameters(t *testing.T) {
	assert.Equal(t, map[string]bool{"petId": true, "ownerId": true},
		extractPathParameters("/pets/{petId}/owners/{ownerId}"))
	assert.Empty(t, extractPathParameters("/pets"))
}
