package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradecollector/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	gotSymbol string
	gotStart  *int64
	gotEnd    *int64
	results   []query.StoredTrade
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, symbol string, start, end *int64) ([]query.StoredTrade, error) {
	f.gotSymbol, f.gotStart, f.gotEnd = symbol, start, end
	return f.results, f.err
}

type fakeHealth struct{ err error }

func (f *fakeHealth) Health(ctx context.Context) error { return f.err }

func newTestServer(searcher *fakeSearcher, health *fakeHealth) *Server {
	return NewServer(":0", searcher, health, zap.NewNop())
}

func TestHandleSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []query.StoredTrade{
		{Key: "BTC/USDT:1:1625256000", Symbol: "BTC/USDT", Timestamp: 1625256000000, Price: 50000, Amount: 0.5, Side: "buy"},
	}}
	srv := newTestServer(searcher, &fakeHealth{})

	req := httptest.NewRequest(http.MethodGet, "/trades?symbol=BTC/USDT&start=100&end=200", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BTC/USDT", searcher.gotSymbol)
	require.NotNil(t, searcher.gotStart)
	require.NotNil(t, searcher.gotEnd)
	assert.Equal(t, int64(100), *searcher.gotStart)
	assert.Equal(t, int64(200), *searcher.gotEnd)

	var body struct {
		Symbol string              `json:"symbol"`
		Count  int                 `json:"count"`
		Trades []query.StoredTrade `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "BTC/USDT:1:1625256000", body.Trades[0].Key)
}

func TestHandleSearchUnboundedWhenNoParams(t *testing.T) {
	searcher := &fakeSearcher{}
	srv := newTestServer(searcher, &fakeHealth{})

	req := httptest.NewRequest(http.MethodGet, "/trades?symbol=BTC/USDT", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, searcher.gotStart)
	assert.Nil(t, searcher.gotEnd)
}

func TestHandleSearchRejectsBadInput(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, &fakeHealth{})

	tests := []struct {
		name string
		url  string
	}{
		{"missing symbol", "/trades"},
		{"bad start", "/trades?symbol=BTC/USDT&start=yesterday"},
		{"bad end", "/trades?symbol=BTC/USDT&end=1.5e3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			srv.handleSearch(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSearchFailure(t *testing.T) {
	srv := newTestServer(&fakeSearcher{err: errors.New("redis down")}, &fakeHealth{})

	req := httptest.NewRequest(http.MethodGet, "/trades?symbol=BTC/USDT", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, &fakeHealth{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(&fakeSearcher{}, &fakeHealth{err: errors.New("connection refused")})
	rec = httptest.NewRecorder()
	srv.handleHealth(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
