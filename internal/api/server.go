// Package api exposes the query engine over HTTP for operators and
// downstream consumers. Charting stays out of process; this only serves the
// raw time-range search.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"tradecollector/internal/query"

	"go.uber.org/zap"
)

// Searcher answers time-range queries; implemented by query.Engine.
type Searcher interface {
	Search(ctx context.Context, symbol string, start, end *int64) ([]query.StoredTrade, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Server struct {
	addr   string
	engine Searcher
	health HealthChecker
	logger *zap.Logger
	srv    *http.Server
}

func NewServer(addr string, engine Searcher, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		addr:   addr,
		engine: engine,
		health: health,
		logger: logger,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/trades", s.handleSearch)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server starting", zap.String("addr", s.addr))
	return s.srv.Serve(ln)
}

// handleSearch serves GET /trades?symbol=BTC/USDT&start=<ms>&end=<ms>.
// start/end are optional epoch-millisecond bounds, inclusive.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol required", http.StatusBadRequest)
		return
	}

	start, err := parseBound(r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := parseBound(r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}

	trades, err := s.engine.Search(r.Context(), symbol, start, end)
	if err != nil {
		s.logger.Error("search failed", zap.String("symbol", symbol), zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"symbol": symbol,
		"count":  len(trades),
		"trades": trades,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Health(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func parseBound(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
