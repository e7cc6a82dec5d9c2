package repository

import (
	"testing"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/db"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (ProductRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewProductRepository(testDB)

	products := []model.Product{
		{
			Name:       "Paracetamol 500mg",
			Slug:       "paracetamol-500",
			Price:      4.5,
			Category:   model.CategoryMedicines,
			BodySystem: "nervous",
			Conditions: pq.StringArray{"fever", "flu", "headache"},
			InStock:    true,
			Variations: []model.ProductVariation{
				{Label: "20 tablets", PriceDelta: 0, InStock: true},
				{Label: "50 tablets", PriceDelta: 5.5, InStock: true},
			},
		},
		{
			Name:        "Vitamin C 1000mg",
			Slug:        "vitamin-c-1000",
			Description: "Immune support tablets",
			Price:       9.9,
			Category:    model.CategorySupplements,
			BodySystem:  "immune",
			Conditions:  pq.StringArray{"influenza", "fatigue"},
			InStock:     true,
		},
		{
			Name:       "Sunscreen SPF 50",
			Slug:       "sunscreen-spf50",
			Price:      15.3,
			Category:   model.CategoryPersonal,
			BodySystem: "integumentary",
			InStock:    false,
		},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}

	return repo, testDB
}

func TestProductRepository_FindBySlug(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	product, err := repo.FindBySlug("paracetamol-500")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", product.Name)
	assert.Len(t, product.Variations, 2)

	_, err = repo.FindBySlug("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindWithFilter_Category(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	category := model.CategorySupplements
	products, err := repo.FindWithFilter(ProductFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "vitamin-c-1000", products[0].Slug)
}

func TestProductRepository_FindWithFilter_BodySystem(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	products, err := repo.FindWithFilter(ProductFilter{BodySystem: "nervous"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "paracetamol-500", products[0].Slug)
}

func TestProductRepository_FindWithFilter_Search(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	products, err := repo.FindWithFilter(ProductFilter{Search: "Immune"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "vitamin-c-1000", products[0].Slug)

	products, err = repo.FindWithFilter(ProductFilter{Search: "no-such-thing"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_FindWithFilter_Condition(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	products, err := repo.FindWithFilter(ProductFilter{Condition: "flu"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "paracetamol-500", products[0].Slug)

	// "flu" must not match "influenza"; elements match whole, not substring
	products, err = repo.FindWithFilter(ProductFilter{Condition: "influenza"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "vitamin-c-1000", products[0].Slug)

	products, err = repo.FindWithFilter(ProductFilter{Condition: "toothache"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_FindWithFilter_InStockOnly(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	products, err := repo.FindWithFilter(ProductFilter{InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.True(t, p.InStock)
	}
}

func TestProductRepository_ListCategoriesAndBodySystems(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	categories, err := repo.ListCategories()
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.ProductCategory{
		model.CategoryMedicines,
		model.CategorySupplements,
		model.CategoryPersonal,
	}, categories)

	systems, err := repo.ListBodySystems()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"nervous", "immune", "integumentary"}, systems)
}

func TestProductRepository_ListConditions(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	conditions, err := repo.ListConditions()
	require.NoError(t, err)
	assert.Equal(t, []string{"fatigue", "fever", "flu", "headache", "influenza"}, conditions)
}

func TestProductRepository_FindVariationByID(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	product, err := repo.FindBySlug("paracetamol-500")
	require.NoError(t, err)
	require.NotEmpty(t, product.Variations)

	variation, err := repo.FindVariationByID(product.Variations[0].ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, variation.ProductID)
	assert.Equal(t, "20 tablets", variation.Label)
}
