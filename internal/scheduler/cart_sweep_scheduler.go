package scheduler

import (
	"time"

	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartSweepScheduler periodically closes cart stores whose session has gone
// quiet. The durable copy stays in Redis; a returning visitor hydrates a
// fresh store from it.
type CartSweepScheduler struct {
	cron    *cron.Cron
	carts   *cartstore.Manager
	maxIdle time.Duration
}

func NewCartSweepScheduler(carts *cartstore.Manager, maxIdle time.Duration) *CartSweepScheduler {
	return &CartSweepScheduler{
		cron:    cron.New(),
		carts:   carts,
		maxIdle: maxIdle,
	}
}

// Start schedules the sweep every 5 minutes.
func (s *CartSweepScheduler) Start() error {
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		evicted := s.carts.SweepIdle(s.maxIdle)
		if evicted > 0 {
			logger.Info("Swept idle cart sessions", map[string]interface{}{
				"evicted":   evicted,
				"remaining": s.carts.Len(),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for cart sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart sweep scheduler started", map[string]interface{}{
		"max_idle": s.maxIdle.String(),
	})
	return nil
}

// Stop halts the scheduler.
func (s *CartSweepScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Cart sweep scheduler stopped", nil)
}
