package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/auphere/places-sync/internal/geo"
	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/internal/search"
	"github.com/auphere/places-sync/internal/sync"
	"github.com/auphere/places-sync/pkg/google"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.store.GetByIdentifier(r.Context(), id)
	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			respondError(w, http.StatusNotFound, "place not found")
			return
		}
		zap.L().Error("place lookup failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "lat is required and must be a number")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "lng is required and must be a number")
		return
	}

	radiusM := 0
	if raw := q.Get("radius_m"); raw != "" {
		radiusM, err = strconv.Atoi(raw)
		if err != nil || radiusM <= 0 {
			respondError(w, http.StatusBadRequest, "radius_m must be a positive integer")
			return
		}
	}

	res, err := s.search.Nearby(r.Context(), search.Query{
		Lat:       lat,
		Lng:       lng,
		RadiusM:   radiusM,
		PlaceType: q.Get("type"),
		Keyword:   q.Get("keyword"),
	})
	if err != nil {
		if errors.Is(err, google.ErrRateLimited) {
			respondError(w, http.StatusTooManyRequests, "upstream rate limit exceeded")
			return
		}
		zap.L().Error("search failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSyncCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	q := r.URL.Query()

	cellKM := 0.0
	if raw := q.Get("cell_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "cell_km must be a positive number")
			return
		}
		cellKM = v
	}
	radiusM := 0
	if raw := q.Get("radius_m"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "radius_m must be a positive integer")
			return
		}
		radiusM = v
	}

	stats, err := s.syncer.SyncCity(r.Context(), city, q.Get("place_type"), cellKM, radiusM)
	if err != nil {
		if errors.Is(err, geo.ErrUnknownCity) {
			respondError(w, http.StatusNotFound, "unknown city: "+city)
			return
		}
		zap.L().Error("sync failed", zap.String("city", city), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type batchRequest struct {
	Cities    []string `json:"cities"`
	PlaceType string   `json:"place_type"`
}

type batchResponse struct {
	Summary *sync.Stats   `json:"summary"`
	Details []*sync.Stats `json:"details"`
}

func (s *Server) handleSyncBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Cities) == 0 {
		respondError(w, http.StatusBadRequest, "cities is required")
		return
	}

	details := s.syncer.SyncCities(r.Context(), req.Cities, req.PlaceType)
	respondJSON(w, http.StatusOK, batchResponse{
		Summary: sync.Aggregate(details),
		Details: details,
	})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		zap.L().Error("status query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "status query failed")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
