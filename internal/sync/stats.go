// Package sync orchestrates bulk place synchronization from the Places API
// into the store.
package sync

import "time"

// Stats tracks the results of one sync operation. Field names match the
// service's wire format.
type Stats struct {
	City            string     `json:"city"`
	APIRequests     int        `json:"api_requests"`
	PlacesRetrieved int        `json:"places_retrieved"`
	PlacesCreated   int        `json:"places_created"`
	PlacesSkipped   int        `json:"places_skipped"`
	PlacesFailed    int        `json:"places_failed"`
	ReviewsCreated  int        `json:"reviews_created"`
	PhotosCreated   int        `json:"photos_created"`
	Errors          []string   `json:"errors"`
	DurationSeconds float64    `json:"duration_seconds"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewStats creates a zeroed tracker stamped with the current time.
func NewStats(city string) *Stats {
	return &Stats{
		City:      city,
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}
}

// Complete stamps the completion time and duration. Later calls are no-ops.
func (s *Stats) Complete(d time.Duration) {
	if s.CompletedAt != nil {
		return
	}
	now := time.Now().UTC()
	s.CompletedAt = &now
	s.DurationSeconds = d.Seconds()
}

// AggregateCity is the city label on aggregated stats.
const AggregateCity = "Multiple Cities"

// Aggregate sums a list of per-city stats into one record. Errors are
// concatenated in input order. An empty input yields a zeroed record.
func Aggregate(list []*Stats) *Stats {
	agg := NewStats(AggregateCity)

	for _, s := range list {
		if s == nil {
			continue
		}
		agg.APIRequests += s.APIRequests
		agg.PlacesRetrieved += s.PlacesRetrieved
		agg.PlacesCreated += s.PlacesCreated
		agg.PlacesSkipped += s.PlacesSkipped
		agg.PlacesFailed += s.PlacesFailed
		agg.ReviewsCreated += s.ReviewsCreated
		agg.PhotosCreated += s.PhotosCreated
		agg.DurationSeconds += s.DurationSeconds
		agg.Errors = append(agg.Errors, s.Errors...)
	}

	now := time.Now().UTC()
	agg.CompletedAt = &now
	return agg
}
