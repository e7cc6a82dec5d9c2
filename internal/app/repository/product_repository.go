package repository

import (
	"sort"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Category    *model.ProductCategory
	BodySystem  string
	Condition   string
	Search      string
	InStockOnly bool
	Limit       int
	Offset      int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindVariationByID(id uint) (*model.ProductVariation, error)
	ListCategories() ([]model.ProductCategory, error)
	ListBodySystems() ([]string, error)
	ListConditions() ([]string, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"slug": product.Slug,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Preload("Variations").Find(&products).Error; err != nil {
		logger.Error("Failed to list products from database", err, nil)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":    filter.Category,
		"body_system": filter.BodySystem,
		"condition":   filter.Condition,
		"search":      filter.Search,
	})

	query := r.db.Model(&model.Product{}).Preload("Variations")

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.BodySystem != "" {
		query = query.Where("body_system = ?", filter.BodySystem)
	}
	if filter.Condition != "" {
		query = query.Where(r.conditionPredicate(filter.Condition))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.InStockOnly {
		query = query.Where("in_stock = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, nil)
		return nil, err
	}
	return products, nil
}

// conditionPredicate matches products whose conditions array contains the
// given condition. On Postgres the column is a real text[]; elsewhere (the
// sqlite test harness) the array is stored as its literal text with every
// element quoted, so a quote-bounded LIKE gives exact element matches.
func (r *productRepository) conditionPredicate(condition string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return r.db.Where("? = ANY (conditions)", condition)
	}
	return r.db.Where("conditions LIKE ?", `%"`+condition+`"%`)
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Variations").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Variations").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindVariationByID(id uint) (*model.ProductVariation, error) {
	var variation model.ProductVariation
	if err := r.db.First(&variation, id).Error; err != nil {
		return nil, err
	}
	return &variation, nil
}

func (r *productRepository) ListCategories() ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	err := r.db.Model(&model.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		logger.Error("Failed to list product categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) ListBodySystems() ([]string, error) {
	var systems []string
	err := r.db.Model(&model.Product{}).
		Distinct("body_system").
		Where("body_system <> ''").
		Order("body_system ASC").
		Pluck("body_system", &systems).Error
	if err != nil {
		logger.Error("Failed to list body systems", err, nil)
		return nil, err
	}
	return systems, nil
}

// ListConditions returns the distinct medical conditions across the catalog.
func (r *productRepository) ListConditions() ([]string, error) {
	if r.db.Dialector.Name() == "postgres" {
		var conditions []string
		err := r.db.Model(&model.Product{}).
			Distinct().
			Pluck("unnest(conditions)", &conditions).Error
		if err != nil {
			logger.Error("Failed to list conditions", err, nil)
			return nil, err
		}
		sort.Strings(conditions)
		return conditions, nil
	}

	// Without array support each row scans back from its literal text;
	// dedupe in Go.
	var rows []pq.StringArray
	err := r.db.Model(&model.Product{}).
		Where("conditions IS NOT NULL").
		Pluck("conditions", &rows).Error
	if err != nil {
		logger.Error("Failed to list conditions", err, nil)
		return nil, err
	}

	seen := make(map[string]bool)
	var conditions []string
	for _, row := range rows {
		for _, condition := range row {
			if !seen[condition] {
				seen[condition] = true
				conditions = append(conditions, condition)
			}
		}
	}
	sort.Strings(conditions)
	return conditions, nil
}
