package redisstore

import (
	"context"
	"fmt"
)

// Field names of a stored trade hash.
const (
	FieldTimestamp     = "timestamp"
	FieldSymbol        = "symbol"
	FieldPrice         = "price"
	FieldAmount        = "amount"
	FieldSide          = "side"
	FieldOrderBookBids = "order_book_bids"
	FieldOrderBookAsks = "order_book_asks"
)

// PutTrade stores the field map under key and stamps the configured TTL.
// An existing hash is overwritten and its TTL refreshed.
func (c *Client) PutTrade(ctx context.Context, key string, fields map[string]any) error {
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, classify(err))
	}
	if err := c.rdb.Expire(ctx, key, c.ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, classify(err))
	}
	return nil
}

// GetTrade fetches the hash stored under key. Returns ErrNotFound when the
// record is absent or has expired. Lookups are never retried here; that
// decision belongs to the caller.
func (c *Client) GetTrade(ctx context.Context, key string) (map[string]string, error) {
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, classify(err))
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return fields, nil
}
