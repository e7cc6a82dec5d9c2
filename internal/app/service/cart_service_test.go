package service

import (
	"context"
	"testing"
	"time"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest(t *testing.T) (CartService, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)

	product := &model.Product{
		Name:       "Paracetamol 500mg",
		Slug:       "paracetamol-500",
		Price:      4.5,
		Category:   model.CategoryMedicines,
		BodySystem: "nervous",
		InStock:    true,
		Variations: []model.ProductVariation{
			{Label: "50 tablets", PriceDelta: 5.5, InStock: true},
			{Label: "100 tablets", PriceDelta: 9.0, InStock: false},
		},
	}
	require.NoError(t, productRepo.Create(product))

	manager := cartstore.NewManager(func(string) cartstore.Storage {
		return cartstore.NewMemoryBackend().Storage()
	}, 20*time.Millisecond)
	t.Cleanup(manager.Shutdown)

	return NewCartService(manager, productRepo), product
}

func TestCartService_AddProduct(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	err := cartService.AddProduct(ctx, "sess", product.ID, nil, 2)
	require.NoError(t, err)

	view := cartService.GetCart(ctx, "sess")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "paracetamol-500", view.Lines[0].ID)
	assert.Equal(t, "Paracetamol 500mg", view.Lines[0].Name)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.InDelta(t, 9.0, view.Total, 1e-9)
	assert.Equal(t, 2, view.ItemCount)
}

func TestCartService_AddProduct_MergesRepeatedAdds(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, nil, 2))
	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, nil, 3))

	view := cartService.GetCart(ctx, "sess")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestCartService_AddProduct_NotFound(t *testing.T) {
	cartService, _ := setupCartServiceTest(t)

	err := cartService.AddProduct(context.Background(), "sess", 9999, nil, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddProduct_WithVariation(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	variationID := product.Variations[0].ID
	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, &variationID, 1))

	view := cartService.GetCart(ctx, "sess")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "50 tablets", view.Lines[0].Variation)
	assert.InDelta(t, 10.0, view.Lines[0].Price, 1e-9, "variation price is base plus delta")
	assert.NotEqual(t, product.Slug, view.Lines[0].ID, "variation lines are distinct from the plain product")

	// Plain product and variation are separate cart lines
	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, nil, 1))
	assert.Len(t, cartService.GetCart(ctx, "sess").Lines, 2)
}

func TestCartService_AddProduct_OutOfStockVariation(t *testing.T) {
	cartService, product := setupCartServiceTest(t)

	variationID := product.Variations[1].ID
	err := cartService.AddProduct(context.Background(), "sess", product.ID, &variationID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartService_AddProduct_UnknownVariation(t *testing.T) {
	cartService, product := setupCartServiceTest(t)

	variationID := uint(9999)
	err := cartService.AddProduct(context.Background(), "sess", product.ID, &variationID, 1)
	assert.ErrorIs(t, err, ErrInvalidVariation)
}

func TestCartService_QuantityFlows(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, nil, 2))
	lineID := cartService.GetCart(ctx, "sess").Lines[0].ID

	cartService.SetQuantity(ctx, "sess", lineID, 6)
	assert.Equal(t, 6, cartService.GetCart(ctx, "sess").Lines[0].Quantity)

	cartService.SetQuantity(ctx, "sess", lineID, 0)
	assert.Equal(t, 6, cartService.GetCart(ctx, "sess").Lines[0].Quantity, "below 1 is a no-op")

	cartService.IncreaseQuantity(ctx, "sess", lineID, 1)
	assert.Equal(t, 7, cartService.GetCart(ctx, "sess").Lines[0].Quantity)

	cartService.DecreaseQuantity(ctx, "sess", lineID, 10)
	assert.Equal(t, 1, cartService.GetCart(ctx, "sess").Lines[0].Quantity, "decrease clamps at 1")

	cartService.RemoveLine(ctx, "sess", lineID)
	assert.Empty(t, cartService.GetCart(ctx, "sess").Lines)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	require.NoError(t, cartService.AddProduct(ctx, "sess", product.ID, nil, 3))
	cartService.ClearCart(ctx, "sess")

	view := cartService.GetCart(ctx, "sess")
	assert.Empty(t, view.Lines)
	assert.Equal(t, 0.0, view.Total)
	assert.Equal(t, 0, view.ItemCount)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	cartService, product := setupCartServiceTest(t)
	ctx := context.Background()

	require.NoError(t, cartService.AddProduct(ctx, "alice", product.ID, nil, 1))

	assert.Len(t, cartService.GetCart(ctx, "alice").Lines, 1)
	assert.Empty(t, cartService.GetCart(ctx, "bob").Lines)
}
