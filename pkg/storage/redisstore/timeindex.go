package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Unbounded score range markers, as Redis spells them.
const (
	ScoreMin = "-inf"
	ScoreMax = "+inf"
)

// AddToIndex inserts key into the symbol's time index with the trade
// timestamp as score. Re-adding an existing key updates its score.
func (c *Client) AddToIndex(ctx context.Context, symbol, key string, score float64) error {
	z := redis.Z{Score: score, Member: key}
	if err := c.rdb.ZAdd(ctx, indexKey(symbol), z).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", indexKey(symbol), classify(err))
	}
	return nil
}

// IndexRange returns trade keys whose scores fall in [min, max] inclusive,
// ascending by score. min/max are Redis score bounds, e.g. "1625256000000"
// or ScoreMin/ScoreMax for an unbounded side.
func (c *Client) IndexRange(ctx context.Context, symbol, min, max string) ([]string, error) {
	keys, err := c.rdb.ZRangeByScore(ctx, indexKey(symbol), &redis.ZRangeBy{
		Min: min,
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore %s: %w", indexKey(symbol), classify(err))
	}
	return keys, nil
}
