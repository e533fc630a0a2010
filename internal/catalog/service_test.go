package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
	"github.com/ariefcatur/go-inventory-api.git/internal/memstore"
)

func newService() (*catalog.Service, *memstore.Store) {
	store := memstore.New()
	return catalog.NewService(store.Catalog(), store.Catalog()), store
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	p, err := svc.Create(ctx, "owner-1", catalog.CreateInput{
		Name:        "amoxicillin",
		Description: "antibiotic 500mg",
		Quantity:    20,
		PriceCents:  1500,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "owner-1", p.OwnerID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	cases := []struct {
		name  string
		in    catalog.CreateInput
		field string
	}{
		{"missing name", catalog.CreateInput{Description: "d", Quantity: 1, PriceCents: 1}, "name"},
		{"missing description", catalog.CreateInput{Name: "n", Quantity: 1, PriceCents: 1}, "description"},
		{"negative quantity", catalog.CreateInput{Name: "n", Description: "d", Quantity: -1, PriceCents: 1}, "quantity"},
		{"negative price", catalog.CreateInput{Name: "n", Description: "d", Quantity: 1, PriceCents: -1}, "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner-1", tc.in)
			var fe apperr.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe, tc.field)
		})
	}
}

func TestCreateProductDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	in := catalog.CreateInput{Name: "unique-name", Description: "d", Quantity: 1, PriceCents: 1}
	_, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "owner-2", in)
	var fe apperr.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "name")
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		_, err := svc.Create(ctx, "owner-1", catalog.CreateInput{Name: name, Description: "d", Quantity: 1, PriceCents: 1})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alpha", page.Items[0].Name)
	assert.Equal(t, "bravo", page.Items[1].Name)

	page, err = svc.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "echo", page.Items[0].Name)

	// defaults kick in for nonsense values
	page, err = svc.List(ctx, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Items, 5)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	p, err := svc.Create(ctx, "owner-1", catalog.CreateInput{Name: "zinc", Description: "supplement", Quantity: 10, PriceCents: 400})
	require.NoError(t, err)

	newQty := 3
	updated, err := svc.Update(ctx, p.ID, catalog.UpdateInput{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "zinc", updated.Name)
	assert.Equal(t, 400, updated.PriceCents)

	badQty := -5
	_, err = svc.Update(ctx, p.ID, catalog.UpdateInput{Quantity: &badQty})
	var fe apperr.FieldErrors
	require.ErrorAs(t, err, &fe)

	_, err = svc.Update(ctx, "no-such-id", catalog.UpdateInput{Quantity: &newQty})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	p, err := svc.Create(ctx, "owner-1", catalog.CreateInput{Name: "to-delete", Description: "d", Quantity: 1, PriceCents: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, "owner-1", catalog.CreateInput{Name: "cough syrup", Description: "for dry cough", Quantity: 5, PriceCents: 900})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", catalog.CreateInput{Name: "eye drops", Description: "lubricant", Quantity: 5, PriceCents: 700})
	require.NoError(t, err)

	out, err := svc.Search(ctx, "cough")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cough syrup", out[0].Name)

	out, err = svc.Search(ctx, "nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = svc.Search(ctx, "")
	var fe apperr.FieldErrors
	require.ErrorAs(t, err, &fe)
}
