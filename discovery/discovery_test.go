package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/internal/testutil"
	"github.com/erraggy/swaggen/swagerrors"
)

func collect(t *testing.T, w *Walker) []Source {
	t.Helper()
	sources, err := Collect(context.Background(), w.Sources())
	require.NoError(t, err)
	return sources
}

func relPaths(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.RelPath)
	}
	return out
}

func TestSources_LexicographicOrder(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a/b.yaml":   "{}",
		"a.yaml":     "{}",
		"a-b/c.yaml": "{}",
		"B.json":     "{}",
		"a/a.yml":    "{}",
	})

	got := relPaths(collect(t, New(root)))
	assert.Equal(t, []string{"B.json", "a-b/c.yaml", "a.yaml", "a/a.yml", "a/b.yaml"}, got)
}

func TestSources_SkipsUnrecognizedAndHidden(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"petstore/pets.yaml":    "{}",
		"petstore/README.md":    "# notes",
		"petstore/.draft.yaml":  "{}",
		".git/config.yaml":      "{}",
		"petstore/logo.png":     "png",
		"petstore/models/X.yml": "{}",
	})

	got := relPaths(collect(t, New(root)))
	assert.Equal(t, []string{"petstore/models/X.yml", "petstore/pets.yaml"}, got)
}

func TestSources_Restartable(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	w := New(root)

	first := collect(t, w)
	second := collect(t, w)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSources_StopsEarly(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	count := 0
	for _, err := range New(root).Sources() {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestSources_Classification(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	byRel := make(map[string]Source)
	for _, s := range collect(t, New(root)) {
		byRel[s.RelPath] = s
	}

	tests := []struct {
		rel        string
		id         string
		spec       string
		kind       Kind
		standalone bool
	}{
		{"info.yaml", "info", "", KindInfo, false},
		{"petstore/info.yaml", "petstore/info", "petstore", KindInfo, false},
		{"petstore/pets.yaml", "petstore/pets", "petstore", KindDefinition, false},
		{"petstore/actions/createPet.yaml", "petstore/actions/createPet", "petstore", KindAction, false},
		{"petstore/models/Owner.yaml", "petstore/models/Owner", "petstore", KindModel, false},
		{"store.yaml", "store", "store", KindDefinition, true},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			src, ok := byRel[tt.rel]
			require.True(t, ok, "missing %s", tt.rel)
			assert.Equal(t, tt.id, src.ID)
			assert.Equal(t, tt.spec, src.Spec)
			assert.Equal(t, tt.kind, src.Kind)
			assert.Equal(t, tt.standalone, src.Standalone)
			assert.True(t, filepath.IsAbs(src.Path))
		})
	}
	assert.True(t, byRel["info.yaml"].IsRootInfo())
}

func TestClassify_TopLevelActionsDirectory(t *testing.T) {
	src, ok := classify("actions/run.yaml", "/x/actions/run.yaml")
	require.True(t, ok)
	assert.Equal(t, KindDefinition, src.Kind)
	assert.Equal(t, "actions", src.Spec)
}

func TestClassify_InfoNamedDeclaration(t *testing.T) {
	tests := []struct {
		rel  string
		kind Kind
		spec string
	}{
		{"petstore/actions/info.yaml", KindAction, "petstore"},
		{"petstore/models/info.yaml", KindModel, "petstore"},
		{"petstore/info.yaml", KindInfo, "petstore"},
		{"actions/info.yaml", KindInfo, "actions"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			src, ok := classify(tt.rel, "/x/"+tt.rel)
			require.True(t, ok)
			assert.Equal(t, tt.kind, src.Kind)
			assert.Equal(t, tt.spec, src.Spec)
		})
	}
}

func TestSources_SkipDir(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"petstore/pets.yaml":      "{}",
		"generated/petstore.json": "{}",
		"generated/petstore.yaml": "{}",
		"generated/nested/x.yaml": "{}",
	})

	got := relPaths(collect(t, New(root, WithSkipDir(filepath.Join(root, "generated")))))
	assert.Equal(t, []string{"petstore/pets.yaml"}, got)
}

func TestSources_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Collect(context.Background(), New(missing).Sources())
	require.Error(t, err)
	assert.ErrorIs(t, err, swagerrors.ErrDiscovery)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSources_RootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	_, err := Collect(context.Background(), New(file).Sources())
	assert.ErrorIs(t, err, swagerrors.ErrDiscovery)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestCollect_Cancelled(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, New(root).Sources())
	assert.ErrorIs(t, err, swagerrors.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "billing", "invoices"), OutputPath("out", "billing/invoices"))
}
