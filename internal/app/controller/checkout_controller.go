package controller

import (
	"errors"
	"net/http"

	"github.com/farmavida/farmavida-backend/internal/app/service"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// GetSummary returns the checkout handoff payload for the session's cart.
// The messaging front end composes the outbound order from it; nothing here
// mutates the cart.
// GET /api/v1/checkout/summary
func (ctrl *CheckoutController) GetSummary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	summary, err := ctrl.checkoutService.Summary(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		log.Error("Failed to build checkout summary", err, map[string]interface{}{
			"session": sessionID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build checkout summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
