package venue

import (
	"fmt"
	"strconv"
)

// PriceLevel is one (price, size) rung of the order book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBookSnapshot is the venue's book at one instant, captured once per
// fetch cycle and attached to every trade produced in that cycle.
type OrderBookSnapshot struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// Trade is one executed trade as reported by the venue. Immutable once
// constructed.
type Trade struct {
	ID        string
	Timestamp int64 // epoch millis
	Price     float64
	Amount    float64
	Side      string // "buy" or "sell"
}

// Wire formats (binance-style).

type depthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

type tradeResponse struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

func parseLevels(raw [][2]string) ([]PriceLevel, error) {
	levels := make([]PriceLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse level price %q: %w", pair[0], err)
		}
		size, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse level size %q: %w", pair[1], err)
		}
		levels = append(levels, PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}

func parseTrade(raw tradeResponse) (Trade, error) {
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return Trade{}, fmt.Errorf("parse trade price %q: %w", raw.Price, err)
	}
	amount, err := strconv.ParseFloat(raw.Qty, 64)
	if err != nil {
		return Trade{}, fmt.Errorf("parse trade qty %q: %w", raw.Qty, err)
	}

	// The venue reports the maker side; the trade side is the taker's.
	side := "buy"
	if raw.IsBuyerMaker {
		side = "sell"
	}

	return Trade{
		ID:        strconv.FormatInt(raw.ID, 10),
		Timestamp: raw.Time,
		Price:     price,
		Amount:    amount,
		Side:      side,
	}, nil
}
