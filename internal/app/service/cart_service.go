package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductUnavailable = errors.New("product is out of stock")
	ErrInvalidVariation   = errors.New("invalid product variation")
)

// CartView is what the storefront renders: the snapshot plus its derived
// aggregates.
type CartView struct {
	Lines     []cartstore.Line `json:"lines"`
	Total     float64          `json:"total"`
	ItemCount int              `json:"item_count"`
}

// CartService resolves catalog products into cart lines and forwards the
// storefront's intents to the session's cart store. All quantity
// sanitization lives in the store itself.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) CartView
	AddProduct(ctx context.Context, sessionID string, productID uint, variationID *uint, quantity int) error
	SetQuantity(ctx context.Context, sessionID, lineID string, quantity int)
	IncreaseQuantity(ctx context.Context, sessionID, lineID string, delta int)
	DecreaseQuantity(ctx context.Context, sessionID, lineID string, delta int)
	RemoveLine(ctx context.Context, sessionID, lineID string)
	ClearCart(ctx context.Context, sessionID string)
}

type cartService struct {
	carts       *cartstore.Manager
	productRepo repository.ProductRepository
}

func NewCartService(carts *cartstore.Manager, productRepo repository.ProductRepository) CartService {
	return &cartService{
		carts:       carts,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) CartView {
	store := s.carts.GetOrCreate(ctx, sessionID)
	return CartView{
		Lines:     store.Lines(),
		Total:     store.Total(),
		ItemCount: store.ItemCount(),
	}
}

func (s *cartService) AddProduct(ctx context.Context, sessionID string, productID uint, variationID *uint, quantity int) error {
	logger.Info("Adding product to cart", map[string]interface{}{
		"session":      sessionID,
		"product_id":   productID,
		"variation_id": variationID,
		"quantity":     quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"session":    sessionID,
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		logger.Error("Failed to fetch product for cart", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	if !product.InStock {
		return ErrProductUnavailable
	}

	line, err := s.buildLine(product, variationID, quantity)
	if err != nil {
		return err
	}

	s.carts.GetOrCreate(ctx, sessionID).Add(line)
	return nil
}

// buildLine derives the cart line for a product and optional variation. The
// line ID has to stay stable per product+variation so repeated adds merge.
func (s *cartService) buildLine(product *model.Product, variationID *uint, quantity int) (cartstore.Line, error) {
	line := cartstore.Line{
		ID:            product.Slug,
		Name:          product.Name,
		Price:         product.Price,
		Quantity:      quantity,
		Category:      string(product.Category),
		Description:   product.Description,
		InStock:       &product.InStock,
		OriginalPrice: product.OriginalPrice,
		Discount:      product.Discount,
	}

	if variationID == nil {
		return line, nil
	}

	variation, err := s.productRepo.FindVariationByID(*variationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cartstore.Line{}, ErrInvalidVariation
		}
		return cartstore.Line{}, err
	}
	if variation.ProductID != product.ID {
		logger.Warn("Variation does not belong to product", map[string]interface{}{
			"product_id":   product.ID,
			"variation_id": variation.ID,
		})
		return cartstore.Line{}, ErrInvalidVariation
	}
	if !variation.InStock {
		return cartstore.Line{}, ErrProductUnavailable
	}

	line.ID = fmt.Sprintf("%s::%d", product.Slug, variation.ID)
	line.Variation = variation.Label
	line.Price = product.Price + variation.PriceDelta
	line.InStock = &variation.InStock
	return line, nil
}

func (s *cartService) SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) {
	s.carts.GetOrCreate(ctx, sessionID).SetQuantity(lineID, float64(quantity))
}

func (s *cartService) IncreaseQuantity(ctx context.Context, sessionID, lineID string, delta int) {
	s.carts.GetOrCreate(ctx, sessionID).IncreaseQuantity(lineID, float64(delta))
}

func (s *cartService) DecreaseQuantity(ctx context.Context, sessionID, lineID string, delta int) {
	s.carts.GetOrCreate(ctx, sessionID).DecreaseQuantity(lineID, float64(delta))
}

func (s *cartService) RemoveLine(ctx context.Context, sessionID, lineID string) {
	s.carts.GetOrCreate(ctx, sessionID).Remove(lineID)
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) {
	logger.Info("Clearing cart", map[string]interface{}{
		"session": sessionID,
	})
	s.carts.GetOrCreate(ctx, sessionID).Clear()
}
