package pipeline

import (
	"errors"

	"tradecollector/pkg/venue"
)

// validate gates a raw trade before it may reach any store. A failure is a
// skip for that trade only, never a retry.
func validate(symbol string, t venue.Trade) error {
	switch {
	case t.Timestamp <= 0:
		return errors.New("missing timestamp")
	case symbol == "":
		return errors.New("missing symbol")
	case t.ID == "":
		return errors.New("missing trade id")
	case t.Price <= 0:
		return errors.New("missing price")
	case t.Amount <= 0:
		return errors.New("amount must be positive")
	case t.Side != "buy" && t.Side != "sell":
		return errors.New("side must be buy or sell")
	}
	return nil
}
