package service

import (
	"errors"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// CatalogService is the read-only browsing surface: by category, by body
// system, by medical condition, and free-text search.
type CatalogService interface {
	GetProduct(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	Search(query string) ([]model.Product, error)
	ListCategories() ([]model.ProductCategory, error)
	ListBodySystems() ([]string, error)
	ListConditions() ([]string, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category":    filter.Category,
		"body_system": filter.BodySystem,
		"condition":   filter.Condition,
	})
	return s.productRepo.FindWithFilter(filter)
}

func (s *catalogService) Search(query string) ([]model.Product, error) {
	if query == "" {
		return []model.Product{}, nil
	}
	return s.productRepo.FindWithFilter(repository.ProductFilter{Search: query})
}

func (s *catalogService) ListCategories() ([]model.ProductCategory, error) {
	return s.productRepo.ListCategories()
}

func (s *catalogService) ListBodySystems() ([]string, error) {
	return s.productRepo.ListBodySystems()
}

func (s *catalogService) ListConditions() ([]string, error) {
	return s.productRepo.ListConditions()
}
