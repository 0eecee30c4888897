// Package place defines the place domain model and its persistence layer.
package place

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Place is a stored point of interest.
type Place struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Description         *string         `json:"description,omitempty" db:"description"`
	Type                string          `json:"type" db:"type"`
	Latitude            float64         `json:"latitude" db:"latitude"`
	Longitude           float64         `json:"longitude" db:"longitude"`
	Address             *string         `json:"address,omitempty" db:"address"`
	City                string          `json:"city" db:"city"`
	District            *string         `json:"district,omitempty" db:"district"`
	PostalCode          *string         `json:"postal_code,omitempty" db:"postal_code"`
	Phone               *string         `json:"phone,omitempty" db:"phone"`
	Website             *string         `json:"website,omitempty" db:"website"`
	GooglePlaceID       *string         `json:"google_place_id,omitempty" db:"google_place_id"`
	MainCategories      []string        `json:"main_categories" db:"main_categories"`
	SecondaryCategories []string        `json:"secondary_categories" db:"secondary_categories"`
	CuisineTypes        []string        `json:"cuisine_types" db:"cuisine_types"`
	GoogleRating        *float64        `json:"google_rating,omitempty" db:"google_rating"`
	GoogleRatingCount   *int            `json:"google_rating_count,omitempty" db:"google_rating_count"`
	PriceLevel          *int            `json:"price_level,omitempty" db:"price_level"`
	GooglePlaceURL      *string         `json:"google_place_url,omitempty" db:"google_place_url"`
	OpeningHours        json.RawMessage `json:"opening_hours,omitempty" db:"opening_hours"`
	IsOpenNow           *bool           `json:"is_open_now,omitempty" db:"is_open_now"`
	BusinessStatus      *string         `json:"business_status,omitempty" db:"business_status"`
	SuitableFor         []string        `json:"suitable_for" db:"suitable_for"`
	IsActive            bool            `json:"is_active" db:"is_active"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// CreatePlaceRequest carries the fields written on insert or update.
type CreatePlaceRequest struct {
	Name                string          `json:"name"`
	Description         *string         `json:"description,omitempty"`
	Type                string          `json:"type"`
	Latitude            float64         `json:"latitude"`
	Longitude           float64         `json:"longitude"`
	Address             *string         `json:"address,omitempty"`
	City                string          `json:"city"`
	District            *string         `json:"district,omitempty"`
	PostalCode          *string         `json:"postal_code,omitempty"`
	Phone               *string         `json:"phone,omitempty"`
	Website             *string         `json:"website,omitempty"`
	GooglePlaceID       *string         `json:"google_place_id,omitempty"`
	MainCategories      []string        `json:"main_categories"`
	SecondaryCategories []string        `json:"secondary_categories"`
	CuisineTypes        []string        `json:"cuisine_types"`
	GoogleRating        *float64        `json:"google_rating,omitempty"`
	GoogleRatingCount   *int            `json:"google_rating_count,omitempty"`
	PriceLevel          *int            `json:"price_level,omitempty"`
	GooglePlaceURL      *string         `json:"google_place_url,omitempty"`
	OpeningHours        json.RawMessage `json:"opening_hours,omitempty"`
	IsOpenNow           *bool           `json:"is_open_now,omitempty"`
	BusinessStatus      *string         `json:"business_status,omitempty"`
	SuitableFor         []string        `json:"suitable_for"`
}

// Review is a stored user review.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlaceID    uuid.UUID `json:"place_id" db:"place_id"`
	Source     string    `json:"source" db:"source"`
	SourceID   *string   `json:"source_id,omitempty" db:"source_id"`
	Author     *string   `json:"author,omitempty" db:"author"`
	Rating     float64   `json:"rating" db:"rating"`
	Text       *string   `json:"text,omitempty" db:"text"`
	PostedAt   time.Time `json:"posted_at" db:"posted_at"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	HasPhoto   bool      `json:"has_photo" db:"has_photo"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateReviewRequest carries the fields written when upserting a review.
// (Source, SourceID) is the dedup key.
type CreateReviewRequest struct {
	PlaceID    uuid.UUID `json:"place_id"`
	Source     string    `json:"source"`
	SourceID   *string   `json:"source_id,omitempty"`
	Author     *string   `json:"author,omitempty"`
	Rating     float64   `json:"rating"`
	Text       *string   `json:"text,omitempty"`
	PostedAt   time.Time `json:"posted_at"`
	IsVerified bool      `json:"is_verified"`
	HasPhoto   bool      `json:"has_photo"`
}

// Photo is a stored photo reference.
type Photo struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	PlaceID              uuid.UUID `json:"place_id" db:"place_id"`
	Source               string    `json:"source" db:"source"`
	SourcePhotoReference *string   `json:"source_photo_reference,omitempty" db:"source_photo_reference"`
	PhotoURL             string    `json:"photo_url" db:"photo_url"`
	ThumbnailURL         *string   `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Width                *int      `json:"width,omitempty" db:"width"`
	Height               *int      `json:"height,omitempty" db:"height"`
	Attribution          *string   `json:"attribution,omitempty" db:"attribution"`
	IsPrimary            bool      `json:"is_primary" db:"is_primary"`
	DisplayOrder         int       `json:"display_order" db:"display_order"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// CreatePhotoRequest carries the fields written when upserting a photo.
// (Source, SourcePhotoReference) is the dedup key.
type CreatePhotoRequest struct {
	PlaceID              uuid.UUID `json:"place_id"`
	Source               string    `json:"source"`
	SourcePhotoReference *string   `json:"source_photo_reference,omitempty"`
	PhotoURL             string    `json:"photo_url"`
	ThumbnailURL         *string   `json:"thumbnail_url,omitempty"`
	Width                *int      `json:"width,omitempty"`
	Height               *int      `json:"height,omitempty"`
	Attribution          *string   `json:"attribution,omitempty"`
	IsPrimary            bool      `json:"is_primary"`
	DisplayOrder         int       `json:"display_order"`
}

// Counts summarizes stored place volume.
type Counts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Recent24 int64 `json:"recent_24h"`
}
