package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/farmavida/farmavida-backend/config"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// dialTimeout bounds the startup ping; Redis being down must not stall boot,
// the caller degrades to in-memory carts instead.
const dialTimeout = 5 * time.Second

var client *redis.Client

// Init connects the shared Redis client and verifies the connection with a
// ping. On error the client is left nil and GetClient must not be used.
func Init(cfg *config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis ping %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	client = c
	logger.Info("Redis connection established", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})
	return nil
}

// GetClient returns the shared client. Nil until Init succeeds.
func GetClient() *redis.Client {
	return client
}

// Close releases the shared client. Safe to call when Init never succeeded.
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection", nil)
	err := client.Close()
	client = nil
	return err
}
