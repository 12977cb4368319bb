package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/telarr-bot/telarr/core/config"
	"github.com/telarr-bot/telarr/core/logger"
)

// RedisStore keeps dialogue states in Redis as JSON payloads with TTL,
// surviving bot restarts.
type RedisStore[S any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(cfg coreconfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.SES.Info("redis connected",
		slog.String("event", "session.redis"),
		slog.String("addr", cfg.Addr),
		slog.Int("db", cfg.DB),
	)
	return client, nil
}

// NewRedisStore builds a RedisStore on an established client. The prefix
// namespaces keys so multiple bots can share one Redis database.
func NewRedisStore[S any](client *redis.Client, prefix string, ttl time.Duration) *RedisStore[S] {
	if prefix == "" {
		prefix = "telarr:session"
	}
	return &RedisStore[S]{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore[S]) redisKey(key Key) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Get fetches and decodes the stored state for key.
func (r *RedisStore[S]) Get(ctx context.Context, key Key) (S, bool, error) {
	var zero S
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("session get %s: %w", key, err)
	}
	var state S
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt payload is treated as absent; the requester simply
		// starts a new dialogue.
		logger.SES.Warn("dropping undecodable session",
			slog.String("event", "session.decode"),
			slog.String("key", key.String()),
			slog.String("err", err.Error()),
		)
		_ = r.client.Del(ctx, r.redisKey(key)).Err()
		return zero, false, nil
	}
	return state, true, nil
}

// Put encodes and stores state for key, refreshing the TTL.
func (r *RedisStore[S]) Put(ctx context.Context, key Key, state S) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.redisKey(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session put %s: %w", key, err)
	}
	return nil
}

// Clear removes the dialogue for key if present.
func (r *RedisStore[S]) Clear(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("session clear %s: %w", key, err)
	}
	return nil
}
