package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/seedstoroots/seeds-backend/config"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, nil when Redis is not
// configured. Callers treat a nil client as "cache disabled".
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

// CacheCart stores the serialized cart response for a user
func CacheCart(ctx context.Context, userID uint, payload []byte, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	if err := client.Set(ctx, cartKey(userID), payload, ttl).Err(); err != nil {
		logger.Error("Failed to cache cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// GetCachedCart returns the cached cart payload, or nil on a miss
func GetCachedCart(ctx context.Context, userID uint) ([]byte, error) {
	if client == nil {
		return nil, nil
	}
	payload, err := client.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return payload, nil
}

// InvalidateCart drops the cached cart for a user. Called after every
// cart mutation so reads never serve stale items.
func InvalidateCart(ctx context.Context, userID uint) error {
	if client == nil {
		return nil
	}
	if err := client.Del(ctx, cartKey(userID)).Err(); err != nil {
		logger.Error("Failed to invalidate cached cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// BlacklistToken adds a token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	err := client.Set(ctx, key, "revoked", expiry).Err()
	if err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		// Key does not exist - token is not blacklisted
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}

	return val == "revoked", nil
}
