package writer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/internal/testutil"
	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/resolver"
	"github.com/erraggy/swaggen/swagerrors"
)

func resolved(t *testing.T, files map[string]string, spec string) *resolver.ResolvedSpec {
	t.Helper()
	root := testutil.WriteTree(t, files)
	sources, err := discovery.Collect(context.Background(), discovery.New(root).Sources())
	require.NoError(t, err)
	var defs []*parser.SpecDefinition
	for _, src := range sources {
		def, err := parser.Parse(context.Background(), src)
		require.NoError(t, err, src.RelPath)
		defs = append(defs, def)
	}
	g, err := resolver.Resolve(context.Background(), resolver.NewNamespace(defs, nil))
	require.NoError(t, err)
	rs, errs := resolver.Assemble(g, spec)
	require.Empty(t, errs)
	return rs
}

func TestRender_Petstore(t *testing.T) {
	doc := Render(resolved(t, testutil.PetstoreTree(), "petstore"), "2.3.0")

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "Petstore", doc.Info.Title)
	assert.Equal(t, "2.3.0", doc.Info.Version)
	require.Contains(t, doc.Paths, "/pets")
	require.NotNil(t, doc.Paths["/pets"].Get)
	assert.Equal(t, "listPets", doc.Paths["/pets"].Get.OperationID)
	require.NotNil(t, doc.Paths["/petstore/actions/createPet"].Post)
	assert.Contains(t, doc.Definitions, "Pet")
	assert.Contains(t, doc.Parameters, "PageSize")
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "petstore", doc.Tags[0].Name)
}

func TestRender_DoesNotChangeSpecInfo(t *testing.T) {
	spec := resolved(t, testutil.PetstoreTree(), "petstore")
	Render(spec, "9.9.9")
	assert.Equal(t, "2.0.0", spec.Info.Version)
}

func TestRender_Requires(t *testing.T) {
	spec := resolved(t, map[string]string{
		"svc/a.yaml": "operations:\n  - name: login\n  - name: logout\n    requires: [login]\n    x-audit: true\n",
	}, "svc")
	doc := Render(spec, "1.0.0")

	logout := doc.Paths["/svc/actions/logout"].Post
	require.NotNil(t, logout)
	assert.Equal(t, []string{"login"}, logout.Extra[RequiresExtension])

	data, err := Marshal(doc, FormatJSON)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	op := raw["paths"].(map[string]any)["/svc/actions/logout"].(map[string]any)["post"].(map[string]any)
	assert.Equal(t, []any{"login"}, op["x-requires"])
	assert.Equal(t, true, op["x-audit"])
	login := raw["paths"].(map[string]any)["/svc/actions/login"].(map[string]any)["post"].(map[string]any)
	assert.NotContains(t, login, "x-requires")
}

func TestRender_DuplicateRouteKeepsFirst(t *testing.T) {
	spec := &resolver.ResolvedSpec{
		ID:   "svc",
		Info: &parser.Info{Title: "Svc"},
		Operations: []*resolver.Operation{
			{Name: "first", Method: "get", Path: "/x"},
			{Name: "second", Method: "get", Path: "/x"},
		},
	}
	doc := Render(spec, "1.0.0")
	assert.Equal(t, "first", doc.Paths["/x"].Get.OperationID)
}

func TestMarshal_Deterministic(t *testing.T) {
	spec := resolved(t, testutil.PetstoreTree(), "petstore")
	for _, format := range DefaultFormats {
		first, err := Marshal(Render(spec, "2.3.0"), format)
		require.NoError(t, err)
		for range 5 {
			again, err := Marshal(Render(spec, "2.3.0"), format)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(again), format)
		}
		assert.True(t, strings.HasSuffix(string(first), "\n"), format)
		assert.False(t, strings.HasSuffix(string(first), "\n\n"), format)
	}
}

func TestMarshal_JSONLayout(t *testing.T) {
	doc := &Document{
		Swagger: SwaggerVersion,
		Info:    &parser.Info{Title: "T", Version: "1.0.0"},
		Paths:   map[string]*PathItem{},
	}
	data, err := Marshal(doc, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, `{
  "swagger": "2.0",
  "info": {
    "title": "T",
    "version": "1.0.0"
  },
  "paths": {}
}
`, string(data))
}

func TestMarshal_YAMLSharesKeyOrder(t *testing.T) {
	doc := &Document{
		Swagger: SwaggerVersion,
		Info:    &parser.Info{Title: "T", Version: "1.0.0", Description: "line one\nline two"},
		Paths: map[string]*PathItem{
			"/b": {Get: &Operation{OperationID: "b", Responses: map[string]*parser.Response{"200": {Description: "true"}}}},
			"/a": {Get: &Operation{OperationID: "a", Responses: map[string]*parser.Response{"200": {Description: "OK"}}}},
		},
	}
	data, err := Marshal(doc, FormatYAML)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "swagger: \"2.0\"\ninfo:\n  title: T\n"), out)
	assert.Contains(t, out, "\"200\":")
	assert.Contains(t, out, "description: \"true\"")
	assert.Contains(t, out, "description: |-\n    line one\n    line two\n")
	assert.Less(t, strings.Index(out, "/a:"), strings.Index(out, "/b:"))
	assert.Less(t, strings.Index(out, "info:"), strings.Index(out, "paths:"))
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"yml", "JSON", "yaml"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatYAML, FormatJSON}, formats)

	_, err = ParseFormats([]string{"xml"})
	assert.Error(t, err)
	assert.Equal(t, ".yaml", FormatYAML.Ext())
}

func TestWrite(t *testing.T) {
	out := t.TempDir()
	doc := Render(resolved(t, testutil.PetstoreTree(), "petstore"), "2.3.0")

	paths, err := Write(context.Background(), out, "billing/invoices", doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "billing", "invoices.json"),
		filepath.Join(out, "billing", "invoices.yaml"),
	}, paths)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(testutil.ReadFile(t, paths[0]), &parsed))
	assert.Equal(t, "2.3.0", parsed["info"].(map[string]any)["version"])

	entries, err := os.ReadDir(filepath.Join(out, "billing"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestWrite_EscapingIdentifierFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	doc := &Document{Swagger: SwaggerVersion, Info: &parser.Info{}, Paths: map[string]*PathItem{}}

	_, err := Write(context.Background(), out, "../evil", doc, []Format{FormatJSON})
	require.Error(t, err)
	assert.True(t, errors.Is(err, swagerrors.ErrWrite))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(out), "evil.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_CancelledLeavesExistingArtifact(t *testing.T) {
	out := t.TempDir()
	testutil.WriteFiles(t, out, map[string]string{"orders.json": "stale\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := &Document{Swagger: SwaggerVersion, Info: &parser.Info{}, Paths: map[string]*PathItem{}}
	written, err := Write(ctx, out, "orders", doc, []Format{FormatJSON})

	require.Error(t, err)
	assert.True(t, errors.Is(err, swagerrors.ErrCancelled))
	assert.Empty(t, written)
	assert.Equal(t, "stale\n", string(testutil.ReadFile(t, filepath.Join(out, "orders.json"))))
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAggregate(t *testing.T) {
	tree := testutil.PetstoreTree()
	docs := map[string]*Document{
		"petstore": Render(resolved(t, tree, "petstore"), "2.3.0"),
		"store":    Render(resolved(t, tree, "store"), "2.3.0"),
	}

	agg, err := Aggregate(&parser.Info{Title: "All Services"}, docs)
	require.NoError(t, err)
	assert.Equal(t, "All Services", agg.Info.Title)
	assert.Equal(t, "2.3.0", agg.Info.Version)
	require.Len(t, agg.Tags, 2)
	assert.Equal(t, "petstore", agg.Tags[0].Name)
	assert.Equal(t, "Petstore", agg.Tags[0].Description)
	assert.Equal(t, "store", agg.Tags[1].Name)
	assert.Contains(t, agg.Paths, "/pets")
	assert.Contains(t, agg.Paths, "/store/orders")
	// Pet is a foreign definition of store and identical to petstore's.
	assert.Contains(t, agg.Definitions, "Pet")

	untitled, err := Aggregate(nil, docs)
	require.NoError(t, err)
	assert.Equal(t, "API", untitled.Info.Title)
}

func TestAggregate_Conflicts(t *testing.T) {
	a := &Document{
		Info:        &parser.Info{Title: "A"},
		Paths:       map[string]*PathItem{"/x": {Get: &Operation{OperationID: "a"}}},
		Definitions: map[string]*parser.Schema{"User": {Type: "object"}},
	}
	b := &Document{
		Info:        &parser.Info{Title: "B"},
		Paths:       map[string]*PathItem{"/x": {Get: &Operation{OperationID: "b"}, Post: &Operation{OperationID: "c"}}},
		Definitions: map[string]*parser.Schema{"User": {Type: "string"}},
	}

	_, err := Aggregate(nil, map[string]*Document{"a": a, "b": b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /x of b is already declared by another specification")
	assert.Contains(t, err.Error(), "definition User of b differs from the one declared by a")
	assert.NotContains(t, err.Error(), "POST")
}
