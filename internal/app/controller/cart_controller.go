package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farmavida/farmavida-backend/internal/app/service"
	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID   uint  `json:"product_id" binding:"required"`
	VariationID *uint `json:"variation_id"`
	// Raw on purpose: any malformed or non-positive quantity coerces to 1,
	// adding is never rejected over it. Even `"quantity": "three"` adds one.
	Quantity json.RawMessage `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		log.Warn("Cart request without a session", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "No browsing session",
		})
		return
	}

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)

	c.JSON(http.StatusOK, gin.H{
		"lines":      view.Lines,
		"count":      len(view.Lines),
		"item_count": view.ItemCount,
		"total":      view.Total,
	})
}

// AddToCart adds a product (or product variation) to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"session": sessionID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	quantity := cartstore.CoerceQuantity(req.Quantity)
	err := ctrl.cartService.AddProduct(c.Request.Context(), sessionID, req.ProductID, req.VariationID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrInvalidVariation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product variation"})
		case errors.Is(err, service.ErrProductUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Product is out of stock"})
		default:
			log.Error("Failed to add to cart", err, map[string]interface{}{
				"session":    sessionID,
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		}
		return
	}

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Added to cart",
		"lines":      view.Lines,
		"item_count": view.ItemCount,
		"total":      view.Total,
	})
}

// SetQuantity sets a line's quantity
// PATCH /api/v1/cart/items/:id
//
// A requested quantity below 1 leaves the line untouched; removing a line
// is its own endpoint.
func (ctrl *CartController) SetQuantity(c *gin.Context) {
	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctrl.cartService.SetQuantity(c.Request.Context(), sessionID, c.Param("id"), req.Quantity)

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"lines":      view.Lines,
		"item_count": view.ItemCount,
		"total":      view.Total,
	})
}

// IncreaseQuantity bumps a line's quantity
// POST /api/v1/cart/items/:id/increase
func (ctrl *CartController) IncreaseQuantity(c *gin.Context) {
	ctrl.adjustQuantity(c, +1)
}

// DecreaseQuantity lowers a line's quantity, clamping at 1
// POST /api/v1/cart/items/:id/decrease
func (ctrl *CartController) DecreaseQuantity(c *gin.Context) {
	ctrl.adjustQuantity(c, -1)
}

func (ctrl *CartController) adjustQuantity(c *gin.Context, direction int) {
	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	// Body is optional; an empty body means a step of 1.
	var req AdjustQuantityRequest
	_ = c.ShouldBindJSON(&req)
	delta := req.Delta
	if delta == 0 {
		delta = 1
	}

	ctx := c.Request.Context()
	if direction > 0 {
		ctrl.cartService.IncreaseQuantity(ctx, sessionID, c.Param("id"), delta)
	} else {
		ctrl.cartService.DecreaseQuantity(ctx, sessionID, c.Param("id"), delta)
	}

	view := ctrl.cartService.GetCart(ctx, sessionID)
	c.JSON(http.StatusOK, gin.H{
		"lines":      view.Lines,
		"item_count": view.ItemCount,
		"total":      view.Total,
	})
}

// RemoveLine deletes a line from the cart
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	ctrl.cartService.RemoveLine(c.Request.Context(), sessionID, c.Param("id"))

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Removed from cart",
		"lines":      view.Lines,
		"item_count": view.ItemCount,
		"total":      view.Total,
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	ctrl.cartService.ClearCart(c.Request.Context(), sessionID)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Cart cleared",
		"lines":      []interface{}{},
		"item_count": 0,
		"total":      0,
	})
}
