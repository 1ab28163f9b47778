// Package venue talks to the exchange REST API: one order-book snapshot and
// one batch of recent trades per fetch cycle. It is the collector's only
// view of the outside market.
package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks venue failures expected to resolve with retry:
// transport errors, 5xx responses and rate limiting. The collector re-runs
// the whole fetch cycle on this class and abandons it on anything else.
var ErrUnavailable = errors.New("venue unavailable")

// IsTransient reports whether err belongs to the retryable venue class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

type RESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetOrderBook fetches the current book snapshot for a symbol.
func (c *RESTClient) GetOrderBook(ctx context.Context, symbol string) (*OrderBookSnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v3/depth?symbol=%s&limit=100", c.baseURL, venueSymbol(symbol))

	var raw depthResponse
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	bids, err := parseLevels(raw.Bids)
	if err != nil {
		return nil, fmt.Errorf("decode bids: %w", err)
	}
	asks, err := parseLevels(raw.Asks)
	if err != nil {
		return nil, fmt.Errorf("decode asks: %w", err)
	}

	return &OrderBookSnapshot{Bids: bids, Asks: asks}, nil
}

// GetRecentTrades fetches the latest trades for a symbol in venue order.
// The order of arrival is preserved; callers must not re-sort.
func (c *RESTClient) GetRecentTrades(ctx context.Context, symbol string) ([]Trade, error) {
	endpoint := fmt.Sprintf("%s/api/v3/trades?symbol=%s", c.baseURL, venueSymbol(symbol))

	var raw []tradeResponse
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	trades := make([]Trade, 0, len(raw))
	for _, r := range raw {
		trade, err := parseTrade(r)
		if err != nil {
			return nil, fmt.Errorf("decode trade: %w", err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (c *RESTClient) getJSON(ctx context.Context, endpoint string, out any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body)
		}
		return fmt.Errorf("venue error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// venueSymbol maps the collector's "BTC/USDT" notation to the venue's
// "BTCUSDT" form.
func venueSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
