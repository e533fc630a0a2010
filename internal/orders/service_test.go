package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
	"github.com/ariefcatur/go-inventory-api.git/internal/memstore"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
)

func seedProduct(t *testing.T, store *memstore.Store, name string, qty, price int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "test product",
		Quantity:    qty,
		PriceCents:  price,
		OwnerID:     uuid.NewString(),
	}
	require.NoError(t, store.Catalog().Create(context.Background(), p))
	return p
}

func TestPlaceOrderDecrementsStockAndSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)

	p := seedProduct(t, store, "paracetamol", 5, 250)

	o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 250, o.Items[0].PriceCents)
	assert.Equal(t, 3*250, o.TotalCents)

	after, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Quantity)

	// later price changes must not leak into the stored item
	after.PriceCents = 999
	require.NoError(t, store.Catalog().Update(ctx, after))

	got, err := svc.Get(ctx, o.ID, orders.Actor{ID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, 250, got.Items[0].PriceCents)
	assert.Equal(t, 750, got.TotalCents)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)

	p := seedProduct(t, store, "ibuprofen", 5, 100)

	_, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 10}})
	var short *orders.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, p.ID, short.ProductID)
	assert.Equal(t, 10, short.Requested)
	assert.Equal(t, 5, short.Available)

	after, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Quantity)

	list, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlaceOrderAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)

	good := seedProduct(t, store, "aspirin", 8, 120)

	// second line names a product that does not exist; first line must not stick
	_, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{
		{ProductID: good.ID, Quantity: 2},
		{ProductID: uuid.NewString(), Quantity: 1},
	})
	var unknown *orders.UnknownProductError
	require.ErrorAs(t, err, &unknown)

	after, err := store.Get(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, after.Quantity)

	list, err := svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)
	p := seedProduct(t, store, "bandage", 5, 50)

	var fe apperr.FieldErrors

	_, err := svc.PlaceOrder(ctx, "owner-1", nil)
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "items")

	_, err = svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 0}})
	require.ErrorAs(t, err, &fe)

	_, err = svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: -3}})
	require.ErrorAs(t, err, &fe)

	after, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Quantity)
}

func TestConcurrentPlacementsCannotOversell(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)

	p := seedProduct(t, store, "vitamin-c", 5, 75)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 3}})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var short *orders.InsufficientStockError
		require.ErrorAs(t, err, &short)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	after, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Quantity)
}

func TestGetOrderHidesOthersOrders(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)
	p := seedProduct(t, store, "gauze", 5, 30)

	o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, o.ID, orders.Actor{ID: "someone-else"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.Get(ctx, o.ID, orders.Actor{ID: "admin-user", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)
	p := seedProduct(t, store, "syringe", 5, 40)

	o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, updated.Status)

	var fe apperr.FieldErrors
	_, err = svc.UpdateStatus(ctx, o.ID, "shipped")
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "status")

	_, err = svc.UpdateStatus(ctx, uuid.NewString(), "cancelled")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteOrderRestockPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("default keeps stock decremented", func(t *testing.T) {
		store := memstore.New()
		svc := orders.NewService(store, false)
		p := seedProduct(t, store, "mask", 10, 60)

		o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 4}})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, o.ID, orders.Actor{ID: "owner-1"}))

		after, err := store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, after.Quantity)

		_, err = svc.Get(ctx, o.ID, orders.Actor{ID: "owner-1"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("restock enabled returns quantities", func(t *testing.T) {
		store := memstore.New()
		svc := orders.NewService(store, true)
		p := seedProduct(t, store, "gloves", 10, 60)

		o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 4}})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, o.ID, orders.Actor{ID: "owner-1"}))

		after, err := store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, after.Quantity)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		store := memstore.New()
		svc := orders.NewService(store, false)
		p := seedProduct(t, store, "thermometer", 5, 500)

		o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)

		err = svc.Delete(ctx, o.ID, orders.Actor{ID: "intruder"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		got, err := svc.Get(ctx, o.ID, orders.Actor{ID: "owner-1"})
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})
}

func TestStockNeverNegativeAcrossSequence(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := orders.NewService(store, false)

	p := seedProduct(t, store, "cough-syrup", 7, 300)

	accepted := 0
	for _, qty := range []int{3, 2, 5, 1, 4} {
		o, err := svc.PlaceOrder(ctx, "owner-1", []orders.ItemInput{{ProductID: p.ID, Quantity: qty}})
		if err != nil {
			var short *orders.InsufficientStockError
			require.ErrorAs(t, err, &short)
			continue
		}
		accepted += o.Items[0].Quantity
	}

	after, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7-accepted, after.Quantity)
	assert.GreaterOrEqual(t, after.Quantity, 0)
}

func TestStatusParse(t *testing.T) {
	for _, ok := range []string{"pending", "completed", "cancelled"} {
		st, valid := orders.ParseStatus(ok)
		assert.True(t, valid)
		assert.True(t, st.Valid())
	}
	for _, bad := range []string{"", "PENDING", "done", "shipped"} {
		_, valid := orders.ParseStatus(bad)
		assert.False(t, valid, bad)
	}
}

func TestUnknownProductErrorMessageNamesID(t *testing.T) {
	err := &orders.UnknownProductError{ProductID: "abc-123"}
	assert.Contains(t, err.Error(), "abc-123")
	assert.True(t, errors.As(error(err), new(*orders.UnknownProductError)))
}
