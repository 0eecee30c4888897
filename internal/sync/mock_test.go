package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/pkg/google"
)

// mockSource implements google.Client for testing. Nearby calls are scripted
// per invocation; details are looked up by place ID.
type mockSource struct {
	nearbyResults [][]google.Place
	nearbyErrs    []error
	nearbyCalls   int

	details     map[string]*google.Place
	detailCalls int
}

func (m *mockSource) NearbySearch(_ context.Context, _, _ float64, _ int, _, _ string) ([]google.Place, error) {
	i := m.nearbyCalls
	m.nearbyCalls++
	if i < len(m.nearbyErrs) && m.nearbyErrs[i] != nil {
		return nil, m.nearbyErrs[i]
	}
	if i < len(m.nearbyResults) {
		return m.nearbyResults[i], nil
	}
	return nil, nil
}

func (m *mockSource) PlaceDetails(_ context.Context, placeID string) (*google.Place, error) {
	m.detailCalls++
	if p, ok := m.details[placeID]; ok {
		return p, nil
	}
	return nil, eris.Errorf("no details for %s", placeID)
}

func (m *mockSource) PhotoURL(photoReference string, maxWidth int) string {
	return fmt.Sprintf("https://photo.test/%s?maxwidth=%d", photoReference, maxWidth)
}

// mockPlaceStore implements place.Store for testing. Places already present
// in existing report created=false.
type mockPlaceStore struct {
	existing map[string]uuid.UUID

	upserts   []place.CreatePlaceRequest
	upsertErr error
	reviews   []place.CreateReviewRequest
	reviewErr error
	photos    []place.CreatePhotoRequest
	photoErr  error
}

func (m *mockPlaceStore) UpsertPlace(_ context.Context, req place.CreatePlaceRequest) (*place.Place, bool, error) {
	if m.upsertErr != nil {
		return nil, false, m.upsertErr
	}
	m.upserts = append(m.upserts, req)

	if m.existing == nil {
		m.existing = make(map[string]uuid.UUID)
	}
	key := ""
	if req.GooglePlaceID != nil {
		key = *req.GooglePlaceID
	}
	if id, ok := m.existing[key]; ok {
		return &place.Place{ID: id, Name: req.Name}, false, nil
	}
	id := uuid.New()
	m.existing[key] = id
	return &place.Place{ID: id, Name: req.Name}, true, nil
}

func (m *mockPlaceStore) UpsertReview(_ context.Context, req place.CreateReviewRequest) error {
	if m.reviewErr != nil {
		return m.reviewErr
	}
	m.reviews = append(m.reviews, req)
	return nil
}

func (m *mockPlaceStore) UpsertPhoto(_ context.Context, req place.CreatePhotoRequest) error {
	if m.photoErr != nil {
		return m.photoErr
	}
	m.photos = append(m.photos, req)
	return nil
}

func (m *mockPlaceStore) GetByID(_ context.Context, _ string) (*place.Place, error) {
	return nil, place.ErrNotFound
}

func (m *mockPlaceStore) GetByGooglePlaceID(_ context.Context, _ string) (*place.Place, error) {
	return nil, place.ErrNotFound
}

func (m *mockPlaceStore) GetByIdentifier(_ context.Context, _ string) (*place.Place, error) {
	return nil, place.ErrNotFound
}

func (m *mockPlaceStore) Deactivate(_ context.Context, _ string) error {
	return nil
}

func (m *mockPlaceStore) Counts(_ context.Context) (place.Counts, error) {
	return place.Counts{}, nil
}

func (m *mockPlaceStore) Migrate(_ context.Context) error { return nil }

func (m *mockPlaceStore) Close() error { return nil }
