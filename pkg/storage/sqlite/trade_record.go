package sqlite

import "time"

// TradeRecord is one row of the append-only backup log. There is no
// uniqueness constraint: repeated delivery of the same trade produces
// duplicate rows. This is deliberate — the backup is a log, not a
// key-value store, so the compound (trade_id, symbol, timestamp) lookup
// may match several rows.
type TradeRecord struct {
	ID uint `gorm:"primaryKey"`

	TradeID   string  `gorm:"type:text;not null;index:idx_trades_trade_id"`
	Symbol    string  `gorm:"type:text;not null;index:idx_trades_symbol"`
	Price     float64 `gorm:"not null"`
	Amount    float64 `gorm:"not null"`
	Side      string  `gorm:"type:varchar(4);not null"`
	Timestamp int64   `gorm:"not null;index:idx_trades_timestamp"` // trade time, epoch millis

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TradeRecord) TableName() string {
	return "trades"
}
