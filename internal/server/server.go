// Package server exposes the HTTP surface: public place lookup and cached
// search, plus a token-guarded admin API for triggering syncs.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/internal/search"
	"github.com/auphere/places-sync/internal/sync"
)

// Syncer triggers city synchronization runs.
type Syncer interface {
	SyncCity(ctx context.Context, city, placeType string, cellKM float64, radiusM int) (*sync.Stats, error)
	SyncCities(ctx context.Context, cities []string, placeType string) []*sync.Stats
}

// Server wires the handlers to their backing services.
type Server struct {
	store      place.Store
	syncer     Syncer
	search     *search.Service
	adminToken string
}

func New(store place.Store, syncer Syncer, searchSvc *search.Service, adminToken string) *Server {
	return &Server{store: store, syncer: syncer, search: searchSvc, adminToken: adminToken}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/places/search", s.handleSearch)
	r.Get("/places/{id}", s.handleGetPlace)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdminToken)
		r.Post("/sync/batch", s.handleSyncBatch)
		r.Post("/sync/{city}", s.handleSyncCity)
		r.Get("/sync/status", s.handleSyncStatus)
	})

	return r
}

// requireAdminToken rejects requests whose X-Admin-Token header does not
// match the configured token.
func (s *Server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			respondError(w, http.StatusServiceUnavailable, "admin API disabled: no token configured")
			return
		}
		got := r.Header.Get("X-Admin-Token")
		if got == "" {
			respondError(w, http.StatusUnauthorized, "missing X-Admin-Token header")
			return
		}
		if got != s.adminToken {
			respondError(w, http.StatusForbidden, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
