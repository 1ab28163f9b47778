// Package redisstore is the fast tier: one hash per trade with a 24h TTL,
// plus a per-symbol sorted set indexing trade keys by timestamp.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"tradecollector/config"
	"tradecollector/pkg/retry"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by GetTrade when no record exists under a key,
// typically because the TTL expired.
var ErrNotFound = errors.New("trade record not found")

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks the Redis connection.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// classify maps connectivity failures to the retryable class. Context
// cancellation and command errors (wrong type, bad arguments) pass through
// untouched so callers never retry them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.MarkTransient(err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, redis.ErrClosed) {
		return retry.MarkTransient(err)
	}
	return err
}
