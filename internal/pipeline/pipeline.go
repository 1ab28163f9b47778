// Package pipeline turns one fetch cycle's order book and trades into
// writes against the fast tier and the durable backup.
//
// The three writes per trade (primary store, time index, backup) are
// independent, non-transactional operations. A crash between them can leave
// a trade present in one store and absent from another; this is accepted as
// eventual consistency, reconcilable by primary key.
package pipeline

import (
	"context"
	"encoding/json"

	"tradecollector/pkg/retry"
	"tradecollector/pkg/storage/redisstore"
	"tradecollector/pkg/venue"

	"go.uber.org/zap"
)

// TradeStore is the expiring key->fields store holding one record per trade.
type TradeStore interface {
	PutTrade(ctx context.Context, key string, fields map[string]any) error
}

// TimeIndex is the per-symbol ordered index of trade keys by timestamp.
type TimeIndex interface {
	AddToIndex(ctx context.Context, symbol, key string, score float64) error
}

// Backup is the durable append-only trade log.
type Backup interface {
	Append(ctx context.Context, tradeID, symbol string, price, amount float64, side string, timestampMillis int64) error
}

type Pipeline struct {
	store     TradeStore
	index     TimeIndex
	backup    Backup
	writer    *retry.Writer
	threshold float64
	logger    *zap.Logger
}

func New(store TradeStore, index TimeIndex, backup Backup, writer *retry.Writer, largeVolumeThreshold float64, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		index:     index,
		backup:    backup,
		writer:    writer,
		threshold: largeVolumeThreshold,
		logger:    logger,
	}
}

// ProcessCycle ingests one fetch cycle: each trade is validated, keyed,
// written to all three stores with the cycle's book snapshot embedded, then
// checked against the large-volume threshold. Trades are processed strictly
// in arrival order; a trade's writes complete (or give up) before the next
// trade starts.
func (p *Pipeline) ProcessCycle(ctx context.Context, symbol string, book *venue.OrderBookSnapshot, trades []venue.Trade) {
	bids, asks := serializeBook(book)

	for _, trade := range trades {
		if ctx.Err() != nil {
			return
		}

		if err := validate(symbol, trade); err != nil {
			p.logger.Warn("invalid trade data detected",
				zap.String("symbol", symbol),
				zap.String("trade_id", trade.ID),
				zap.Any("trade", trade),
				zap.Error(err),
			)
			continue
		}

		p.processTrade(ctx, symbol, trade, bids, asks)
	}
}

func (p *Pipeline) processTrade(ctx context.Context, symbol string, trade venue.Trade, bids, asks string) {
	key := redisstore.PrimaryKey(symbol, trade.ID, trade.Timestamp)

	fields := map[string]any{
		redisstore.FieldTimestamp:     trade.Timestamp,
		redisstore.FieldSymbol:        symbol,
		redisstore.FieldPrice:         trade.Price,
		redisstore.FieldAmount:        trade.Amount,
		redisstore.FieldSide:          trade.Side,
		redisstore.FieldOrderBookBids: bids,
		redisstore.FieldOrderBookAsks: asks,
	}

	err := p.writer.Do(ctx, "primary store put", func(ctx context.Context) error {
		return p.store.PutTrade(ctx, key, fields)
	})
	if err != nil {
		p.logger.Error("failed to store trade", zap.String("key", key), zap.Error(err))
		return
	}

	err = p.writer.Do(ctx, "time index add", func(ctx context.Context) error {
		return p.index.AddToIndex(ctx, symbol, key, float64(trade.Timestamp))
	})
	if err != nil {
		p.logger.Error("failed to index trade", zap.String("key", key), zap.Error(err))
		return
	}

	err = p.writer.Do(ctx, "backup append", func(ctx context.Context) error {
		return p.backup.Append(ctx, trade.ID, symbol, trade.Price, trade.Amount, trade.Side, trade.Timestamp)
	})
	if err != nil {
		p.logger.Error("failed to back up trade", zap.String("key", key), zap.Error(err))
		return
	}

	if trade.Amount > p.threshold {
		p.logger.Info("large trade detected",
			zap.String("symbol", symbol),
			zap.Float64("amount", trade.Amount),
			zap.Float64("price", trade.Price),
		)
	}

	p.logger.Debug("stored trade",
		zap.String("symbol", symbol),
		zap.String("trade_id", trade.ID),
		zap.String("key", key),
	)
}

// serializeBook renders bids/asks as JSON arrays of [price, size] pairs,
// matching the shape the venue reports them in.
func serializeBook(book *venue.OrderBookSnapshot) (bids, asks string) {
	if book == nil {
		return "[]", "[]"
	}
	return marshalLevels(book.Bids), marshalLevels(book.Asks)
}

func marshalLevels(levels []venue.PriceLevel) string {
	pairs := make([][2]float64, 0, len(levels))
	for _, l := range levels {
		pairs = append(pairs, [2]float64{l.Price, l.Size})
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "[]"
	}
	return string(b)
}
