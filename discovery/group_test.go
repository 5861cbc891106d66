package discovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/internal/testutil"
	"github.com/erraggy/swaggen/swagerrors"
)

func TestGroup_Petstore(t *testing.T) {
	root := testutil.WriteTree(t, testutil.PetstoreTree())
	g := Group(collect(t, New(root)))

	require.NotNil(t, g.RootInfo)
	assert.Equal(t, "info", g.RootInfo.ID)
	assert.Empty(t, g.Errors)
	assert.Empty(t, g.Shadowed)

	require.Len(t, g.Specs, 2)
	assert.Equal(t, "petstore", g.Specs[0].ID)
	assert.Equal(t, []string{
		"petstore/actions/createPet",
		"petstore/common",
		"petstore/info",
		"petstore/models/Owner",
		"petstore/pets",
	}, g.Specs[0].Documents())
	assert.Equal(t, "store", g.Specs[1].ID)

	assert.Same(t, g.Specs[1], g.Spec("store"))
	assert.Nil(t, g.Spec("missing"))
	assert.Len(t, g.Sources(), 7)
}

func TestGroup_ActionNamedInfo(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"petstore/actions/info.yaml": "description: Service info\n",
		"petstore/actions/list.yaml": "description: List pets\n",
	})
	g := Group(collect(t, New(root)))

	assert.Empty(t, g.Errors)
	require.Len(t, g.Specs, 1)
	assert.Equal(t, "petstore", g.Specs[0].ID)
	assert.Equal(t, []string{"petstore/actions/info", "petstore/actions/list"}, g.Specs[0].Documents())
	assert.Nil(t, g.Spec("petstore/actions"))
}

func TestGroup_DuplicateDocumentIdentifier(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"petstore/pets.json": "{}",
		"petstore/pets.yaml": "{}",
		"other/x.yaml":       "{}",
	})
	g := Group(collect(t, New(root)))

	require.Len(t, g.Shadowed, 1)
	assert.Equal(t, "petstore/pets.yaml", g.Shadowed[0].RelPath, "first source in lexicographic order wins")

	errs := g.Errors["petstore"]
	require.Len(t, errs, 1)
	var resErr *swagerrors.ResolutionError
	require.True(t, errors.As(errs[0], &resErr))
	assert.Equal(t, swagerrors.KindDuplicateIdentifier, resErr.Kind)
	assert.Contains(t, resErr.Message, "petstore/pets.json and petstore/pets.yaml")
	assert.Empty(t, g.Errors["other"])
}

func TestGroup_StandaloneAndDirectoryConflict(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"orders.yaml":       "{}",
		"orders/items.yaml": "{}",
	})
	g := Group(collect(t, New(root)))

	require.Len(t, g.Specs, 1)
	errs := g.Errors["orders"]
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], swagerrors.ErrDuplicateIdentifier)
	assert.Contains(t, errs[0].Error(), "orders.yaml")
}

func TestGroup_CaseInsensitiveOutputCollision(t *testing.T) {
	sources := []Source{
		{ID: "Orders/a", Spec: "Orders", RelPath: "Orders/a.yaml"},
		{ID: "orders/a", Spec: "orders", RelPath: "orders/a.yaml"},
	}
	g := Group(sources)

	for _, id := range []string{"Orders", "orders"} {
		require.Len(t, g.Errors[id], 1, id)
		assert.ErrorIs(t, g.Errors[id][0], swagerrors.ErrDuplicateIdentifier)
	}
}
