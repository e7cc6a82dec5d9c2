package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckoutServiceTest(t *testing.T) (CheckoutService, *cartstore.Manager) {
	manager := cartstore.NewManager(func(string) cartstore.Storage {
		return cartstore.NewMemoryBackend().Storage()
	}, 20*time.Millisecond)
	t.Cleanup(manager.Shutdown)

	return NewCheckoutService(manager), manager
}

func TestCheckoutService_Summary(t *testing.T) {
	checkoutService, manager := setupCheckoutServiceTest(t)
	ctx := context.Background()

	store := manager.GetOrCreate(ctx, "sess")
	store.Add(cartstore.Line{ID: "paracetamol-500", Name: "Paracetamol 500mg", Price: 4.5, Quantity: 2})
	store.Add(cartstore.Line{ID: "vitamin-c-1000", Name: "Vitamin C 1000mg", Price: 12.0, Quantity: 1})

	summary, err := checkoutService.Summary(ctx, "sess")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(summary.Reference, "FV-"))
	assert.Len(t, summary.Lines, 2)
	assert.InDelta(t, 21.0, summary.Total, 1e-9)
	assert.Equal(t, 3, summary.ItemCount)
	assert.WithinDuration(t, time.Now(), summary.CreatedAt, time.Minute)
}

func TestCheckoutService_Summary_EmptyCart(t *testing.T) {
	checkoutService, _ := setupCheckoutServiceTest(t)

	summary, err := checkoutService.Summary(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, summary)
}

func TestCheckoutService_Summary_DoesNotMutateCart(t *testing.T) {
	checkoutService, manager := setupCheckoutServiceTest(t)
	ctx := context.Background()

	store := manager.GetOrCreate(ctx, "sess")
	store.Add(cartstore.Line{ID: "ibuprofen-400", Name: "Ibuprofen 400mg", Price: 6.0, Quantity: 4})

	_, err := checkoutService.Summary(ctx, "sess")
	require.NoError(t, err)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}
