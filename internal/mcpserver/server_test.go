package mcpserver

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		items  []int
		offset int
		limit  int
		want   []int
	}{
		{name: "default limit returns all when under 100", items: items, want: []int{0, 1, 2, 3, 4}},
		{name: "explicit limit", items: items, limit: 2, want: []int{0, 1}},
		{name: "offset only", items: items, offset: 2, want: []int{2, 3, 4}},
		{name: "offset and limit", items: items, offset: 1, limit: 2, want: []int{1, 2}},
		{name: "offset at end", items: items, offset: 4, limit: 2, want: []int{4}},
		{name: "offset beyond end", items: items, offset: 5, limit: 2, want: nil},
		{name: "negative offset", items: items, offset: -1, limit: 2, want: nil},
		{name: "limit exceeds remaining", items: items, offset: 3, limit: 10, want: []int{3, 4}},
		{name: "nil slice", items: nil, limit: 2, want: nil},
		{name: "negative limit treated as default", items: items, limit: -1, want: []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(tt.items, tt.offset, tt.limit))
		})
	}
}

func TestPaginate_OverflowLimit(t *testing.T) {
	assert.Equal(t, []int{1, 2}, paginate([]int{0, 1, 2}, 1, math.MaxInt))
}

func TestPaginate_Caps(t *testing.T) {
	items := make([]int, 1500)
	for i := range items {
		items[i] = i
	}
	assert.Len(t, paginate(items, 0, 0), cfg.DiagnosticLimit)
	assert.Len(t, paginate(items, 0, 1500), cfg.MaxLimit)
}

func TestMakeSlice(t *testing.T) {
	assert.Nil(t, makeSlice[string](0))
	s := makeSlice[string](3)
	assert.Empty(t, s)
	assert.Equal(t, 3, cap(s))
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error returns empty string", err: nil, want: ""},
		{
			name: "strips absolute path",
			err:  fmt.Errorf("source root does not exist: /home/user/defs"),
			want: "source root does not exist: <path>",
		},
		{name: "preserves non-path content", err: errors.New("petstore/pets: unresolved reference"), want: "petstore/pets: unresolved reference"},
		{
			name: "strips multiple paths",
			err:  fmt.Errorf("output /tmp/out is inside /tmp/out/defs"),
			want: "output <path> is inside <path>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}

func TestErrResult(t *testing.T) {
	res := errResult(errors.New("open /tmp/x: denied"))
	assert.True(t, res.IsError)
	assert.Len(t, res.Content, 1)
}
