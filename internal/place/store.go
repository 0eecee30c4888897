package place

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when a place lookup matches nothing.
var ErrNotFound = eris.New("place: not found")

// Store defines persistence operations for places, reviews, and photos.
type Store interface {
	// UpsertPlace inserts a place if its google_place_id is new, otherwise
	// updates the existing row's mutable fields and reactivates it. The
	// boolean reports whether a row was created.
	UpsertPlace(ctx context.Context, req CreatePlaceRequest) (*Place, bool, error)

	// UpsertReview inserts or refreshes a review keyed on (source, source_id).
	UpsertReview(ctx context.Context, req CreateReviewRequest) error

	// UpsertPhoto inserts or refreshes a photo keyed on
	// (source, source_photo_reference).
	UpsertPhoto(ctx context.Context, req CreatePhotoRequest) error

	// GetByID fetches an active place by UUID.
	GetByID(ctx context.Context, id string) (*Place, error)

	// GetByGooglePlaceID fetches an active place by its Google place ID.
	GetByGooglePlaceID(ctx context.Context, googlePlaceID string) (*Place, error)

	// GetByIdentifier parses the identifier as a UUID first and falls back
	// to Google place ID lookup on parse failure.
	GetByIdentifier(ctx context.Context, identifier string) (*Place, error)

	// Deactivate soft-deletes a place.
	Deactivate(ctx context.Context, id string) error

	// Counts returns stored place volume.
	Counts(ctx context.Context) (Counts, error)

	Migrate(ctx context.Context) error
	Close() error
}
