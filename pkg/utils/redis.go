package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"emvi-jobs/internal/config"
	"emvi-jobs/internal/logging"
)

const (
	// idempotencyPending marks a reserved token whose job insert has not
	// finished yet
	idempotencyPending = "pending"

	idempotencyTTL  = 24 * time.Hour
	sessionCacheTTL = 15 * time.Minute
)

// RedisClient wraps the Redis client with idempotency token and checkout
// session caching for the job posting pipeline
type RedisClient struct {
	client *redis.Client
	config *config.Config
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	return &RedisClient{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisClient) IsHealthy(ctx context.Context) error {
	return r.Ping(ctx)
}

// ReserveIdempotencyToken atomically reserves a client-supplied token for a
// free-path submission. Returns false if the token is already reserved,
// meaning the submission is a replay.
func (r *RedisClient) ReserveIdempotencyToken(ctx context.Context, token string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.idempotencyKey(token), idempotencyPending, idempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency token: %w", err)
	}
	return ok, nil
}

// CompleteIdempotencyToken records the job id created under a reserved
// token so replays can return the original job.
func (r *RedisClient) CompleteIdempotencyToken(ctx context.Context, token, jobID string) error {
	err := r.client.Set(ctx, r.idempotencyKey(token), jobID, idempotencyTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to complete idempotency token: %w", err)
	}
	return nil
}

// ReleaseIdempotencyToken drops a reservation after a failed insert so the
// client can retry the submission.
func (r *RedisClient) ReleaseIdempotencyToken(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.idempotencyKey(token)).Err()
}

// LookupIdempotencyToken returns the job id recorded for a token. An empty
// id with ok=true means the original submission is still in flight.
func (r *RedisClient) LookupIdempotencyToken(ctx context.Context, token string) (jobID string, ok bool, err error) {
	val, err := r.client.Get(ctx, r.idempotencyKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up idempotency token: %w", err)
	}
	if val == idempotencyPending {
		return "", true, nil
	}
	return val, true, nil
}

// CacheSessionJob records the job id activated for a checkout session so
// the payment status endpoint can answer without a database read.
func (r *RedisClient) CacheSessionJob(ctx context.Context, sessionID, jobID string) error {
	err := r.client.Set(ctx, r.sessionKey(sessionID), jobID, sessionCacheTTL).Err()
	if err != nil {
		r.logger.Warn("Failed to cache session job id", map[string]interface{}{
			"session_id": TruncateSessionID(sessionID),
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// GetCachedSessionJob returns the cached job id for a checkout session, or
// an empty string on a cache miss.
func (r *RedisClient) GetCachedSessionJob(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get cached session job: %w", err)
	}
	return val, nil
}

func (r *RedisClient) idempotencyKey(token string) string {
	return fmt.Sprintf("idempotency:job:%s", token)
}

func (r *RedisClient) sessionKey(sessionID string) string {
	return fmt.Sprintf("checkout:session:%s", sessionID)
}
