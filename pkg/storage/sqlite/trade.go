package sqlite

import (
	"context"
	"fmt"
)

// Append inserts one row into the backup log. Rows are never updated or
// deleted by the collector.
func (c *Client) Append(ctx context.Context, tradeID, symbol string, price, amount float64, side string, timestampMillis int64) error {
	rec := TradeRecord{
		TradeID:   tradeID,
		Symbol:    symbol,
		Price:     price,
		Amount:    amount,
		Side:      side,
		Timestamp: timestampMillis,
	}

	if err := c.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append trade %s: %w", tradeID, classify(err))
	}
	return nil
}

// FindTrade looks up backup rows by the compound key. trade_id alone is not
// unique across symbols, so all three parts are required.
func (c *Client) FindTrade(ctx context.Context, tradeID, symbol string, timestampMillis int64) ([]TradeRecord, error) {
	var rows []TradeRecord
	err := c.DB.WithContext(ctx).
		Where("trade_id = ? AND symbol = ? AND timestamp = ?", tradeID, symbol, timestampMillis).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountForSymbol returns the number of backup rows stored for a symbol.
func (c *Client) CountForSymbol(ctx context.Context, symbol string) (int64, error) {
	var n int64
	err := c.DB.WithContext(ctx).
		Model(&TradeRecord{}).
		Where("symbol = ?", symbol).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
