package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// OrderSummary is the checkout handoff payload: everything the messaging
// front end needs to compose an outbound order. Building the message itself
// is the front end's job.
type OrderSummary struct {
	Reference string           `json:"reference"`
	Lines     []cartstore.Line `json:"lines"`
	Total     float64          `json:"total"`
	ItemCount int              `json:"item_count"`
	CreatedAt time.Time        `json:"created_at"`
}

// CheckoutService reads the session's cart and derives the handoff summary.
// It never mutates the cart.
type CheckoutService interface {
	Summary(ctx context.Context, sessionID string) (*OrderSummary, error)
}

type checkoutService struct {
	carts *cartstore.Manager
}

func NewCheckoutService(carts *cartstore.Manager) CheckoutService {
	return &checkoutService{carts: carts}
}

func (s *checkoutService) Summary(ctx context.Context, sessionID string) (*OrderSummary, error) {
	store := s.carts.GetOrCreate(ctx, sessionID)

	lines := store.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	summary := &OrderSummary{
		Reference: orderReference(),
		Lines:     lines,
		Total:     store.Total(),
		ItemCount: store.ItemCount(),
		CreatedAt: time.Now(),
	}

	logger.Info("Checkout summary built", map[string]interface{}{
		"session":    sessionID,
		"reference":  summary.Reference,
		"item_count": summary.ItemCount,
		"total":      summary.Total,
	})
	return summary, nil
}

// orderReference is a short human-quotable id, not a database key.
func orderReference() string {
	return "FV-" + strings.ToUpper(uuid.NewString()[:8])
}
