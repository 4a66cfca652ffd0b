// Package httpapi exposes screenings, configuration and the watch-list over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pk-ux/put-options-trading/internal/domain"
	"github.com/pk-ux/put-options-trading/internal/ports"
	"github.com/pk-ux/put-options-trading/internal/screener"
)

// Server wires the HTTP routes to the orchestrator and the config store.
type Server struct {
	orch    *screener.Orchestrator
	store   ports.ConfigStore
	metrics http.Handler
	router  *mux.Router
}

// NewServer builds the router. metrics may be nil.
func NewServer(orch *screener.Orchestrator, store ports.ConfigStore, metrics http.Handler) *Server {
	s := &Server{orch: orch, store: store, metrics: metrics, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(withRequestID, withLogging, withRecovery)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/screenings", s.handleStartScreening).Methods(http.MethodPost)
	api.HandleFunc("/screenings", s.handleCancelScreening).Methods(http.MethodDelete)
	api.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handlePutConfig).Methods(http.MethodPut)
	api.HandleFunc("/config/versions", s.handleConfigVersions).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", s.handleGetWatchlist).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", s.handleAddSymbol).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/{symbol}", s.handleRemoveSymbol).Methods(http.MethodDelete)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type screeningRequest struct {
	Symbols []string        `json:"symbols"`
	Config  json.RawMessage `json:"config,omitempty"` // overlaid on the stored version
}

// adHocVersion tags results screened with a request-level config overlay,
// which is never stored.
const adHocVersion = 0

// handleStartScreening starts a request and streams its events as NDJSON until
// the request completes. Closing the connection cancels the request.
func (s *Server) handleStartScreening(w http.ResponseWriter, r *http.Request) {
	var body screeningRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
			return
		}
	}

	ctx := r.Context()
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(body.Config) > 0 {
		if err := json.Unmarshal(body.Config, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode config: %w", err))
			return
		}
		cfg.Version = adHocVersion
	}
	symbols := body.Symbols
	if len(symbols) == 0 {
		if symbols, err = s.store.Watchlist(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	req, err := s.orch.Start(ctx, symbols, cfg)
	switch {
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, screener.ErrNoSymbols):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("X-Screening-ID", req.ID)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for ev := range req.Events() {
		if err := enc.Encode(ev); err != nil {
			slog.Debug("stream write failed", "request_id", req.ID, "err", err)
			req.Cancel()
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleCancelScreening(w http.ResponseWriter, _ *http.Request) {
	s.orch.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.LoadConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handlePutConfig applies the body over the current version and saves a new one.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.LoadConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	saved, err := s.store.SaveConfig(r.Context(), cfg)
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("screening config updated", "version", saved.Version)
	writeJSON(w, http.StatusOK, saved)
}

type versionsResponse struct {
	Latest int `json:"latest"`
	Count  int `json:"count"`
}

func (s *Server) handleConfigVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := s.store.ConfigVersions(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, versionsResponse{Latest: cfg.Version, Count: n})
}

type watchlistResponse struct {
	Symbols []string `json:"symbols"`
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	syms, err := s.store.Watchlist(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Symbols: syms})
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	sym, err := s.store.AddSymbol(r.Context(), body.Symbol)
	switch {
	case errors.Is(err, domain.ErrDuplicateSymbol):
		writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, domain.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"symbol": sym})
}

func (s *Server) handleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveSymbol(r.Context(), mux.Vars(r)["symbol"]); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
