// Package query answers time-range searches over the fast tier.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"tradecollector/pkg/storage/redisstore"

	"go.uber.org/zap"
)

// Index is the per-symbol time index consulted for key ranges.
type Index interface {
	IndexRange(ctx context.Context, symbol, min, max string) ([]string, error)
}

// Store resolves trade keys to stored field maps.
type Store interface {
	GetTrade(ctx context.Context, key string) (map[string]string, error)
}

// StoredTrade is one record retrieved from the fast tier.
type StoredTrade struct {
	Key       string          `json:"key"`
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Price     float64         `json:"price"`
	Amount    float64         `json:"amount"`
	Side      string          `json:"side"`
	Bids      json.RawMessage `json:"order_book_bids,omitempty"`
	Asks      json.RawMessage `json:"order_book_asks,omitempty"`
}

type Engine struct {
	index  Index
	store  Store
	logger *zap.Logger
}

func NewEngine(index Index, store Store, logger *zap.Logger) *Engine {
	return &Engine{index: index, store: store, logger: logger}
}

// Search returns the symbol's trades with timestamps in [start, end],
// ascending. A nil bound is unbounded on that side. Index entries whose
// backing record has expired are silently omitted; expiry is store-level,
// the index is never trimmed to match.
func (e *Engine) Search(ctx context.Context, symbol string, start, end *int64) ([]StoredTrade, error) {
	min, max := redisstore.ScoreMin, redisstore.ScoreMax
	if start != nil {
		min = strconv.FormatInt(*start, 10)
	}
	if end != nil {
		max = strconv.FormatInt(*end, 10)
	}

	keys, err := e.index.IndexRange(ctx, symbol, min, max)
	if err != nil {
		return nil, fmt.Errorf("time index range: %w", err)
	}

	results := make([]StoredTrade, 0, len(keys))
	for _, key := range keys {
		fields, err := e.store.GetTrade(ctx, key)
		if errors.Is(err, redisstore.ErrNotFound) {
			continue // expired out of the fast tier
		}
		if err != nil {
			return nil, fmt.Errorf("primary store get %s: %w", key, err)
		}

		trade, err := parseRecord(key, fields)
		if err != nil {
			e.logger.Warn("skipping unparsable trade record",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		results = append(results, trade)
	}
	return results, nil
}

func parseRecord(key string, fields map[string]string) (StoredTrade, error) {
	ts, err := strconv.ParseInt(fields[redisstore.FieldTimestamp], 10, 64)
	if err != nil {
		return StoredTrade{}, fmt.Errorf("parse timestamp: %w", err)
	}
	price, err := strconv.ParseFloat(fields[redisstore.FieldPrice], 64)
	if err != nil {
		return StoredTrade{}, fmt.Errorf("parse price: %w", err)
	}
	amount, err := strconv.ParseFloat(fields[redisstore.FieldAmount], 64)
	if err != nil {
		return StoredTrade{}, fmt.Errorf("parse amount: %w", err)
	}

	return StoredTrade{
		Key:       key,
		Symbol:    fields[redisstore.FieldSymbol],
		Timestamp: ts,
		Price:     price,
		Amount:    amount,
		Side:      fields[redisstore.FieldSide],
		Bids:      json.RawMessage(fields[redisstore.FieldOrderBookBids]),
		Asks:      json.RawMessage(fields[redisstore.FieldOrderBookAsks]),
	}, nil
}
