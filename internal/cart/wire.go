package cart

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fournil/internal/config"
)

// NewStore picks the configured cart store. Anything other than "redis"
// falls back to the in-memory store.
func NewStore(cfg config.CartConfig, logger *zap.Logger) Store {
	if cfg.Store == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info("using redis cart store", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.TTL))
		return NewRedisStore(client, cfg.TTL)
	}

	logger.Info("using in-memory cart store")
	return NewMemoryStore()
}

// NewModule wires the cart feature: store, service, controller.
func NewModule(store Store, logger *zap.Logger) (*Service, *Controller) {
	service := NewService(store, logger)
	return service, NewController(service, logger)
}
