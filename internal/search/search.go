// Package search serves ad-hoc nearby lookups straight from the Places API,
// with a TTL response cache in front so repeated map pans don't burn quota.
package search

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/auphere/places-sync/internal/cache"
	"github.com/auphere/places-sync/internal/geo"
	"github.com/auphere/places-sync/pkg/google"
)

const photoMaxWidth = 400

// Query is a nearby-search request. PlaceType and Keyword are optional.
type Query struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	RadiusM   int     `json:"radius_m"`
	PlaceType string  `json:"place_type,omitempty"`
	Keyword   string  `json:"keyword,omitempty"`
}

// Hit is one search result, annotated with the distance from the query point.
type Hit struct {
	GooglePlaceID    string   `json:"google_place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Address          string   `json:"address,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	PhotoURL         string   `json:"photo_url,omitempty"`
	DistanceKM       float64  `json:"distance_km"`
}

// Result wraps the hits with the query echo and a cache indicator.
type Result struct {
	Query  Query `json:"query"`
	Count  int   `json:"count"`
	Cached bool  `json:"cached"`
	Places []Hit `json:"places"`
}

// Service answers nearby queries through the response cache.
type Service struct {
	source google.Client
	cache  *cache.ResponseCache
}

func New(source google.Client, c *cache.ResponseCache) *Service {
	return &Service{source: source, cache: c}
}

// Nearby returns places around the query point, serving identical queries
// from the cache until their entry expires.
func (s *Service) Nearby(ctx context.Context, q Query) (*Result, error) {
	if q.RadiusM <= 0 {
		q.RadiusM = geo.DefaultRadiusM
	}
	key := cache.Key(q.Lat, q.Lng, q.RadiusM, q.PlaceType, q.Keyword)

	if payload, ok := s.cache.Get(key); ok {
		var hits []Hit
		if err := json.Unmarshal([]byte(payload), &hits); err == nil {
			zap.L().Debug("search cache hit", zap.String("key", key))
			return &Result{Query: q, Count: len(hits), Cached: true, Places: hits}, nil
		}
		// Unreadable entry, fall through to a fresh lookup.
		zap.L().Warn("dropping corrupt cache entry", zap.String("key", key))
	}

	results, err := s.source.NearbySearch(ctx, q.Lat, q.Lng, q.RadiusM, q.PlaceType, q.Keyword)
	if err != nil {
		return nil, eris.Wrap(err, "search: nearby lookup")
	}

	hits := make([]Hit, 0, len(results))
	for _, gp := range results {
		hits = append(hits, s.toHit(gp, q))
	}

	payload, err := json.Marshal(hits)
	if err != nil {
		return nil, eris.Wrap(err, "search: encode cache payload")
	}
	s.cache.Set(key, string(payload))

	return &Result{Query: q, Count: len(hits), Places: hits}, nil
}

func (s *Service) toHit(gp google.Place, q Query) Hit {
	hit := Hit{
		GooglePlaceID:    gp.PlaceID,
		Name:             gp.Name,
		Types:            gp.Types,
		Latitude:         gp.Geometry.Location.Lat,
		Longitude:        gp.Geometry.Location.Lng,
		Rating:           gp.Rating,
		UserRatingsTotal: gp.UserRatingsTotal,
		PriceLevel:       gp.PriceLevel,
		DistanceKM:       geo.HaversineKM(q.Lat, q.Lng, gp.Geometry.Location.Lat, gp.Geometry.Location.Lng),
	}
	if gp.FormattedAddress != "" {
		hit.Address = gp.FormattedAddress
	} else {
		hit.Address = gp.Vicinity
	}
	if gp.OpeningHours != nil {
		hit.OpenNow = gp.OpeningHours.OpenNow
	}
	if len(gp.Photos) > 0 {
		hit.PhotoURL = s.source.PhotoURL(gp.Photos[0].PhotoReference, photoMaxWidth)
	}
	return hit
}
