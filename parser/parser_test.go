package parser

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/internal/testutil"
	"github.com/erraggy/swaggen/swagerrors"
)

// sourceFor builds the Source discovery would produce for a relative path.
func sourceFor(t *testing.T, root, rel string) discovery.Source {
	t.Helper()
	sources, err := discovery.Collect(context.Background(), discovery.New(root).Sources())
	require.NoError(t, err)
	for _, s := range sources {
		if s.RelPath == rel {
			return s
		}
	}
	t.Fatalf("source %s not discovered", rel)
	return discovery.Source{}
}

func parseFixture(t *testing.T, files map[string]string, rel string, opts ...Option) (*SpecDefinition, error) {
	t.Helper()
	root := testutil.WriteTree(t, files)
	return Parse(context.Background(), sourceFor(t, root, rel), opts...)
}

func parseErrors(t *testing.T, err error) []*swagerrors.ParseError {
	t.Helper()
	require.Error(t, err)
	var out []*swagerrors.ParseError
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var pe *swagerrors.ParseError
		if errors.As(e, &pe) {
			out = append(out, pe)
		}
	}
	walk(err)
	require.NotEmpty(t, out, "expected parse errors, got %v", err)
	return out
}

func TestParse_DefinitionDocument(t *testing.T) {
	def, err := parseFixture(t, testutil.PetstoreTree(), "petstore/pets.yaml")
	require.NoError(t, err)

	assert.Equal(t, "petstore/pets", def.ID)
	assert.Equal(t, "petstore", def.Spec)
	assert.Equal(t, discovery.KindDefinition, def.Kind)
	assert.Nil(t, def.Info)

	require.Len(t, def.Operations, 1)
	op := def.Operations[0]
	assert.Equal(t, "listPets", op.Name)
	assert.Equal(t, "get", op.Method)
	assert.Equal(t, "/pets", op.Path)
	assert.Equal(t, "listPets", op.Summary)
	assert.Equal(t, []string{"petstore"}, op.Tags)
	assert.Equal(t, []string{"application/json"}, op.Produces)
	assert.Equal(t, 2, op.Location.Line)
	require.Contains(t, op.Responses, "200")
	assert.Equal(t, "listPetsResult", op.Responses["200"].Name)
	assert.Equal(t, "Error", op.Responses["default"].Model)

	require.Contains(t, def.Schemas, "Pet")
	assert.Equal(t, []string{"id", "name"}, def.Schemas["Pet"].Required)
	assert.Equal(t, "int64", def.Schemas["Pet"].Properties["id"].Format)
	require.Contains(t, def.Parameters, "PageSize")
	assert.Equal(t, "query", def.Parameters["PageSize"].In)

	require.Len(t, def.References, 4)
	want := []struct {
		kind  ReferenceKind
		token string
		owner string
		line  int
	}{
		{RefParameter, "PageSize", "listPets", 6},
		{RefSchema, "Pet", "listPets", 13},
		{RefSchema, "Error", "listPets", 16},
		{RefSchema, "Pet", "Pet", 30},
	}
	for i, w := range want {
		ref := def.References[i]
		assert.Equal(t, w.kind, ref.Kind, "reference %d", i)
		assert.Equal(t, w.token, ref.Token, "reference %d", i)
		assert.Equal(t, w.owner, ref.Owner, "reference %d", i)
		assert.Equal(t, w.line, ref.Location.Line, "reference %d", i)
		assert.Equal(t, "petstore/pets.yaml", ref.Location.File)
		assert.False(t, ref.Compose, "reference %d", i)
	}
	assert.Equal(t, "$.schemas.Pet.properties.parent", def.References[3].Path)
}

func TestParse_ActionDocument(t *testing.T) {
	def, err := parseFixture(t, testutil.PetstoreTree(), "petstore/actions/createPet.yaml")
	require.NoError(t, err)

	assert.Equal(t, discovery.KindAction, def.Kind)
	require.Len(t, def.Operations, 1)
	op := def.Operations[0]
	assert.Equal(t, "createPet", op.Name, "name defaults to the file stem")
	assert.Equal(t, "post", op.Method)
	assert.Equal(t, "/petstore/actions/createPet", op.Path)
	require.NotNil(t, op.Request)
	assert.Equal(t, "createPetRequest", op.Request.Name)
	assert.Nil(t, op.Response, "shorthand is folded into responses")
	require.Contains(t, op.Responses, "200")
	assert.Equal(t, "createPetResult", op.Responses["200"].Name)
	assert.Equal(t, "The created pet", op.Responses["200"].Description)

	require.Len(t, def.References, 2)
	assert.Equal(t, "$.request.model", def.References[0].Path)
	assert.Equal(t, "$.response.model", def.References[1].Path)
	assert.Equal(t, "$", def.OperationPath(0))
}

func TestParse_ModelDocument(t *testing.T) {
	def, err := parseFixture(t, testutil.PetstoreTree(), "petstore/models/Owner.yaml")
	require.NoError(t, err)

	require.Contains(t, def.Schemas, "Owner")
	assert.Equal(t, "object", def.Schemas["Owner"].Type)
	require.Len(t, def.References, 1)
	assert.Equal(t, RefSchema, def.References[0].OwnerKind)
	assert.Equal(t, "Owner", def.References[0].Owner)
	assert.Equal(t, "$.properties.pets.items", def.References[0].Path)
}

func TestParse_InfoDocument(t *testing.T) {
	def, err := parseFixture(t, testutil.PetstoreTree(), "petstore/info.yaml")
	require.NoError(t, err)

	require.NotNil(t, def.Info)
	assert.Equal(t, "Petstore", def.Info.Title)
	assert.Equal(t, "2.0.0", def.Info.Version)
	assert.Equal(t, []string{"public"}, def.Info.Profiles)
}

func TestParse_QualifiedReference(t *testing.T) {
	def, err := parseFixture(t, testutil.PetstoreTree(), "store.yaml")
	require.NoError(t, err)

	require.NotNil(t, def.Info)
	assert.Equal(t, "Store", def.Info.Title)
	require.Len(t, def.References, 1)
	tok, err := ParseToken(def.References[0].Token)
	require.NoError(t, err)
	assert.Equal(t, "petstore", tok.Qualifier)
	assert.Equal(t, "Pet", tok.Name)
	assert.Equal(t, "201", firstKey(def.Operations[0].Responses))
}

func firstKey(m map[string]*Response) string {
	for k := range m {
		return k
	}
	return ""
}

func TestParse_VersionKeepsLiteral(t *testing.T) {
	def, err := parseFixture(t, map[string]string{"svc/info.yaml": "title: Svc\nversion: 2.0\n"}, "svc/info.yaml")
	require.NoError(t, err)
	assert.Equal(t, "2.0", def.Info.Version)
}

func TestParse_ComposeReferences(t *testing.T) {
	files := map[string]string{
		"zoo/animals.yaml": `schemas:
  Cat:
    allOf:
      - $ref: Animal
      - type: object
        properties:
          friend:
            $ref: Dog
  Alias:
    $ref: Cat
`,
	}
	def, err := parseFixture(t, files, "zoo/animals.yaml")
	require.NoError(t, err)

	compose := make(map[string]bool)
	for _, ref := range def.References {
		compose[ref.Owner+"->"+ref.Token] = ref.Compose
	}
	assert.Equal(t, map[string]bool{
		"Cat->Animal": true,
		"Cat->Dog":    false,
		"Alias->Cat":  true,
	}, compose)
}

func TestParse_ParameterAlias(t *testing.T) {
	files := map[string]string{
		"svc/paging.yaml": `parameters:
  Limit:
    name: limit
    in: query
    type: integer
  PageSize:
    $ref: Limit
    x-deprecated: true
`,
	}
	def, err := parseFixture(t, files, "svc/paging.yaml")
	require.NoError(t, err)

	require.Contains(t, def.Parameters, "PageSize")
	assert.Equal(t, "Limit", def.Parameters["PageSize"].Ref)
	require.Len(t, def.References, 1)
	assert.Equal(t, RefParameter, def.References[0].Kind)
	assert.Equal(t, "PageSize", def.References[0].Owner)
	assert.Equal(t, "Limit", def.References[0].Token)
}

func TestParse_JSONDocument(t *testing.T) {
	files := map[string]string{
		"svc/types.json": `{
  "schemas": {
    "Id": {"type": "string", "x-internal": true, "enum": ["a", "b"]}
  }
}`,
	}
	def, err := parseFixture(t, files, "svc/types.json")
	require.NoError(t, err)

	require.Contains(t, def.Schemas, "Id")
	assert.Equal(t, map[string]any{"x-internal": true}, def.Schemas["Id"].Extra)
	assert.Equal(t, 3, def.Location(def.SchemaPath("Id")).Line)
}

func TestParse_DefaultedResponse(t *testing.T) {
	def, err := parseFixture(t, map[string]string{"svc/actions/ping.yaml": "description: Health check\n"},
		"svc/actions/ping.yaml")
	require.NoError(t, err)

	resp := def.Operations[0].Responses["200"]
	require.NotNil(t, resp)
	assert.True(t, resp.Defaulted)
	assert.Equal(t, "pingResult", resp.Name)
}

func TestParse_ShapeViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		message string
	}{
		{
			name:    "unknown top-level key",
			content: "schemas: {}\noperatons: []\n",
			line:    2,
			message: "additionalProperties",
		},
		{
			name:    "unknown schema type",
			content: "schemas:\n  Pet:\n    type: objekt\n",
			line:    3,
			message: "schemas.Pet.type",
		},
		{
			name:    "operation without name",
			content: "operations:\n  - method: get\n",
			line:    2,
			message: "name",
		},
		{
			name:    "model and schema together",
			content: "operations:\n  - name: a\n    request:\n      model: A\n      schema: {type: object}\n",
			line:    3,
			message: "request",
		},
		{
			name:    "bad response code",
			content: "operations:\n  - name: a\n    responses:\n      \"2xx\": {description: x}\n",
			line:    0,
			message: "responses",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFixture(t, map[string]string{"svc/defs.yaml": tt.content}, "svc/defs.yaml")
			errs := parseErrors(t, err)
			assert.ErrorIs(t, err, swagerrors.ErrParse)
			assert.Equal(t, "svc/defs.yaml", errs[0].Path)
			assert.Equal(t, "svc/defs", errs[0].Document)
			if tt.line > 0 {
				assert.Equal(t, tt.line, errs[0].Line)
			} else {
				assert.Positive(t, errs[0].Line)
			}
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": "schemas:\n  Pet: [\n"}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	assert.Contains(t, errs[0].Message, "invalid YAML")
	assert.Positive(t, errs[0].Line)
}

func TestParse_NotAMapping(t *testing.T) {
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": "- a\n- b\n"}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	assert.Contains(t, errs[0].Message, "must be a mapping")
	assert.Equal(t, 1, errs[0].Line)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": "  \n"}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	assert.Contains(t, errs[0].Message, "empty")
}

func TestParse_InvalidTokens(t *testing.T) {
	content := `schemas:
  A:
    $ref: "a#b#c"
  B:
    $ref: "#/parameters/PageSize"
  C:
    $ref: "/abs#X"
`
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": content}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	require.Len(t, errs, 3)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Message, `contains '#'`)
	assert.Contains(t, errs[1].Message, "but a schema is expected")
	assert.Contains(t, errs[2].Message, "relative")
}

func TestParse_ResponseShorthandAndExplicitSuccess(t *testing.T) {
	content := `operations:
  - name: get
    response:
      model: Pet
    responses:
      "200":
        model: Missing
`
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": content}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, 6, errs[0].Line)
	assert.Contains(t, errs[0].Message, `declares both response and responses["200"]`)

	def, err := parseFixture(t, map[string]string{"svc/defs.yaml": `operations:
  - name: get
    response:
      model: Pet
    responses:
      "404":
        description: Not found
`}, "svc/defs.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Pet", def.Operations[0].Responses["200"].Model)
	assert.Contains(t, def.Operations[0].Responses, "404")
}

func TestParse_DuplicateOperationName(t *testing.T) {
	content := "operations:\n  - name: a\n  - name: a\n"
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": content}, "svc/defs.yaml")
	errs := parseErrors(t, err)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Message, "declared twice")
}

func TestParse_MaxFileSize(t *testing.T) {
	content := "schemas:\n  A:\n    description: " + strings.Repeat("x", 200) + "\n"
	_, err := parseFixture(t, map[string]string{"svc/defs.yaml": content}, "svc/defs.yaml", WithMaxFileSize(64))
	errs := parseErrors(t, err)
	assert.Contains(t, errs[0].Message, "exceeds maximum size of 64 bytes")
}

func TestParse_Cancelled(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	src := sourceFor(t, root, "petstore/pets.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, src)
	assert.ErrorIs(t, err, swagerrors.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_MissingFile(t *testing.T) {
	src := discovery.Source{
		ID:      "svc/gone",
		Spec:    "svc",
		RelPath: "svc/gone.yaml",
		Path:    filepath.Join(t.TempDir(), "gone.yaml"),
	}
	_, err := Parse(context.Background(), src)
	errs := parseErrors(t, err)
	assert.Contains(t, errs[0].Message, "cannot read file")
}

func TestParseBytes_Logger(t *testing.T) {
	rec := &recordingLogger{}
	p := New(WithLogger(rec))
	src := discovery.Source{ID: "svc/defs", Spec: "svc", RelPath: "svc/defs.yaml"}

	_, err := p.ParseBytes(src, []byte("schemas:\n  A: {type: string}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"parsed definition"}, rec.debug)
}

type recordingLogger struct {
	NopLogger
	debug []string
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.debug = append(r.debug, msg) }

func (r *recordingLogger) With(_ ...any) Logger { return r }
