package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/internal/app/service"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListProducts returns products filtered by category, body system, medical
// condition and search query
// GET /api/v1/products
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		BodySystem: c.Query("body_system"),
		Condition:  c.Query("condition"),
		Search:     c.Query("search"),
	}
	if category := c.Query("category"); category != "" {
		cat := model.ProductCategory(category)
		filter.Category = &cat
	}
	if c.Query("in_stock") == "true" {
		filter.InStockOnly = true
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	products, err := ctrl.catalogService.ListProducts(filter)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by numeric id
// GET /api/v1/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := ctrl.catalogService.GetProduct(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetProductBySlug returns one product by its storefront slug
// GET /api/v1/products/slug/:slug
func (ctrl *CatalogController) GetProductBySlug(c *gin.Context) {
	product, err := ctrl.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCategories returns the distinct catalog categories
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListConditions returns the distinct medical conditions used for browsing
// GET /api/v1/conditions
func (ctrl *CatalogController) ListConditions(c *gin.Context) {
	conditions, err := ctrl.catalogService.ListConditions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conditions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conditions": conditions})
}

// ListBodySystems returns the distinct body systems used for browsing
// GET /api/v1/body-systems
func (ctrl *CatalogController) ListBodySystems(c *gin.Context) {
	systems, err := ctrl.catalogService.ListBodySystems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list body systems"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"body_systems": systems})
}
