package venue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"lastUpdateId":1,"bids":[["50000.00","1.0"],["49999.50","2.5"]],"asks":[["50100.00","1.0"]]}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", 5*time.Second)
	book, err := client.GetOrderBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, PriceLevel{Price: 50000, Size: 1}, book.Bids[0])
	assert.Equal(t, PriceLevel{Price: 49999.5, Size: 2.5}, book.Bids[1])
	assert.Equal(t, PriceLevel{Price: 50100, Size: 1}, book.Asks[0])
}

func TestGetRecentTrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/trades", r.URL.Path)
		w.Write([]byte(`[
			{"id":1,"price":"50000.00","qty":"0.5","time":1625256000000,"isBuyerMaker":false},
			{"id":2,"price":"50001.00","qty":"1.5","time":1625256001000,"isBuyerMaker":true}
		]`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", 5*time.Second)
	trades, err := client.GetRecentTrades(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, Trade{ID: "1", Timestamp: 1625256000000, Price: 50000, Amount: 0.5, Side: "buy"}, trades[0])
	assert.Equal(t, Trade{ID: "2", Timestamp: 1625256001000, Price: 50001, Amount: 1.5, Side: "sell"}, trades[1])
}

func TestAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-MBX-APIKEY")
		w.Write([]byte(`{"lastUpdateId":1,"bids":[],"asks":[]}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.GetOrderBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
}

func TestServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", 5*time.Second)
	_, err := client.GetRecentTrades(context.Background(), "BTC/USDT")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", 5*time.Second)
	_, err := client.GetRecentTrades(context.Background(), "NOPE/USDT")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestConnectionRefusedIsTransient(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewRESTClient(url, "", time.Second)
	_, err := client.GetOrderBook(context.Background(), "BTC/USDT")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
