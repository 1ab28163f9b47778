package redisstore

import "fmt"

// PrimaryKey derives the canonical identity of a stored trade record:
// "<symbol>:<tradeID>:<unix seconds>". It is deterministic, so re-processing
// the same trade overwrites the existing hash instead of duplicating it.
func PrimaryKey(symbol, tradeID string, timestampMillis int64) string {
	return fmt.Sprintf("%s:%s:%d", symbol, tradeID, timestampMillis/1000)
}

// indexKey names the per-symbol sorted set holding trade keys by timestamp.
func indexKey(symbol string) string {
	return symbol + ":trades"
}
