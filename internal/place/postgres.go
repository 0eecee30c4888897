package place

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/auphere/places-sync/internal/db"
)

// PostgresStore implements Store on pgx with PostGIS point storage.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS places (
	id                   UUID PRIMARY KEY,
	name                 TEXT NOT NULL,
	description          TEXT,
	type                 TEXT NOT NULL,
	location             geometry(Point, 4326) NOT NULL,
	address              TEXT,
	city                 TEXT NOT NULL,
	district             TEXT,
	postal_code          TEXT,
	phone                TEXT,
	website              TEXT,
	google_place_id      TEXT UNIQUE,
	main_categories      TEXT[] NOT NULL DEFAULT '{}',
	secondary_categories TEXT[] NOT NULL DEFAULT '{}',
	cuisine_types        TEXT[] NOT NULL DEFAULT '{}',
	google_rating        DOUBLE PRECISION,
	google_rating_count  INTEGER,
	price_level          INTEGER,
	google_place_url     TEXT,
	opening_hours        JSONB,
	is_open_now          BOOLEAN,
	business_status      TEXT,
	suitable_for         TEXT[] NOT NULL DEFAULT '{}',
	is_active            BOOLEAN NOT NULL DEFAULT true,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id          UUID PRIMARY KEY,
	place_id    UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
	source      TEXT NOT NULL,
	source_id   TEXT,
	author      TEXT,
	rating      DOUBLE PRECISION NOT NULL,
	text        TEXT,
	posted_at   TIMESTAMPTZ NOT NULL,
	is_verified BOOLEAN NOT NULL DEFAULT false,
	has_photo   BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, source_id)
);

CREATE TABLE IF NOT EXISTS photos (
	id                     UUID PRIMARY KEY,
	place_id               UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
	source                 TEXT NOT NULL,
	source_photo_reference TEXT,
	photo_url              TEXT NOT NULL,
	thumbnail_url          TEXT,
	width                  INTEGER,
	height                 INTEGER,
	attribution            TEXT,
	is_primary             BOOLEAN NOT NULL DEFAULT false,
	display_order          INTEGER NOT NULL DEFAULT 0,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, source_photo_reference)
);

CREATE INDEX IF NOT EXISTS idx_places_city ON places(city);
CREATE INDEX IF NOT EXISTS idx_places_type ON places(type);
CREATE INDEX IF NOT EXISTS idx_places_location ON places USING GIST(location);
CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id);
CREATE INDEX IF NOT EXISTS idx_photos_place_id ON photos(place_id);
`

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "place: migrate postgres")
}

// Close releases the underlying pool if it owns one.
func (s *PostgresStore) Close() error {
	if closer, ok := s.pool.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

const placeColumns = `id, name, description, type,
	ST_Y(location) AS latitude, ST_X(location) AS longitude,
	address, city, district, postal_code, phone, website, google_place_id,
	main_categories, secondary_categories, cuisine_types,
	google_rating, google_rating_count, price_level, google_place_url,
	opening_hours, is_open_now, business_status, suitable_for,
	is_active, created_at, updated_at`

// encodePoint builds EWKB bytes for a lng/lat point with SRID 4326.
func encodePoint(lat, lng float64) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
	data, err := ewkb.Marshal(p, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "place: encode point")
	}
	return data, nil
}

// UpsertPlace inserts the place if its google_place_id is unseen, detected
// via ON CONFLICT DO NOTHING plus RETURNING. On conflict it updates the
// mutable fields and reactivates the row.
func (s *PostgresStore) UpsertPlace(ctx context.Context, req CreatePlaceRequest) (*Place, bool, error) {
	loc, err := encodePoint(req.Latitude, req.Longitude)
	if err != nil {
		return nil, false, err
	}

	insertArgs := []any{
		uuid.New(), req.Name, req.Description, req.Type, loc,
		req.Address, req.City, req.District, req.PostalCode, req.Phone,
		req.Website, req.GooglePlaceID, req.MainCategories, req.SecondaryCategories,
		req.CuisineTypes, req.GoogleRating, req.GoogleRatingCount, req.PriceLevel,
		req.GooglePlaceURL, req.OpeningHours, req.IsOpenNow, req.BusinessStatus,
		req.SuitableFor,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO places (
			id, name, description, type, location,
			address, city, district, postal_code, phone,
			website, google_place_id, main_categories, secondary_categories,
			cuisine_types, google_rating, google_rating_count, price_level,
			google_place_url, opening_hours, is_open_now, business_status,
			suitable_for
		) VALUES (
			$1, $2, $3, $4, ST_GeomFromEWKB($5),
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22,
			$23
		)
		ON CONFLICT (google_place_id) DO NOTHING
		RETURNING `+placeColumns, insertArgs...)

	p, err := scanPlace(row)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, eris.Wrapf(err, "place: insert %s", req.Name)
	}

	// Conflict: refresh the existing row.
	row = s.pool.QueryRow(ctx, `
		UPDATE places SET
			name = $2, description = $3, type = $4, location = ST_GeomFromEWKB($5),
			address = $6, city = $7, district = $8, postal_code = $9, phone = $10,
			website = $11, main_categories = $12, secondary_categories = $13,
			cuisine_types = $14, google_rating = $15, google_rating_count = $16,
			price_level = $17, google_place_url = $18, opening_hours = $19,
			is_open_now = $20, business_status = $21, suitable_for = $22,
			is_active = true, updated_at = now()
		WHERE google_place_id = $1
		RETURNING `+placeColumns,
		req.GooglePlaceID, req.Name, req.Description, req.Type, loc,
		req.Address, req.City, req.District, req.PostalCode, req.Phone,
		req.Website, req.MainCategories, req.SecondaryCategories,
		req.CuisineTypes, req.GoogleRating, req.GoogleRatingCount,
		req.PriceLevel, req.GooglePlaceURL, req.OpeningHours,
		req.IsOpenNow, req.BusinessStatus, req.SuitableFor,
	)

	p, err = scanPlace(row)
	if err != nil {
		return nil, false, eris.Wrapf(err, "place: update %s", req.Name)
	}
	return p, false, nil
}

// UpsertReview inserts or refreshes a review keyed on (source, source_id).
func (s *PostgresStore) UpsertReview(ctx context.Context, req CreateReviewRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reviews (
			id, place_id, source, source_id, author,
			rating, text, posted_at, is_verified, has_photo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, source_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			text = EXCLUDED.text,
			posted_at = EXCLUDED.posted_at,
			has_photo = EXCLUDED.has_photo`,
		uuid.New(), req.PlaceID, req.Source, req.SourceID, req.Author,
		req.Rating, req.Text, req.PostedAt, req.IsVerified, req.HasPhoto,
	)
	if err != nil {
		return eris.Wrap(err, "place: upsert review")
	}
	return nil
}

// UpsertPhoto inserts or refreshes a photo keyed on
// (source, source_photo_reference).
func (s *PostgresStore) UpsertPhoto(ctx context.Context, req CreatePhotoRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO photos (
			id, place_id, source, source_photo_reference, photo_url,
			thumbnail_url, width, height, attribution, is_primary, display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source, source_photo_reference) DO UPDATE SET
			photo_url = EXCLUDED.photo_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			attribution = EXCLUDED.attribution,
			is_primary = EXCLUDED.is_primary,
			display_order = EXCLUDED.display_order`,
		uuid.New(), req.PlaceID, req.Source, req.SourcePhotoReference, req.PhotoURL,
		req.ThumbnailURL, req.Width, req.Height, req.Attribution, req.IsPrimary,
		req.DisplayOrder,
	)
	if err != nil {
		return eris.Wrap(err, "place: upsert photo")
	}
	return nil
}

// GetByID fetches an active place by UUID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Place, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = $1 AND is_active = true`, id)
	p, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "place: id %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "place: get by id %s", id)
	}
	return p, nil
}

// GetByGooglePlaceID fetches an active place by Google place ID.
func (s *PostgresStore) GetByGooglePlaceID(ctx context.Context, googlePlaceID string) (*Place, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+placeColumns+` FROM places WHERE google_place_id = $1 AND is_active = true`, googlePlaceID)
	p, err := scanPlace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "place: google place id %s", googlePlaceID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "place: get by google place id %s", googlePlaceID)
	}
	return p, nil
}

// GetByIdentifier tries a UUID lookup first, then Google place ID.
func (s *PostgresStore) GetByIdentifier(ctx context.Context, identifier string) (*Place, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.GetByID(ctx, id.String())
	}
	return s.GetByGooglePlaceID(ctx, identifier)
}

// Deactivate soft-deletes a place.
func (s *PostgresStore) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE places SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "place: deactivate %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "place: deactivate %s", id)
	}
	return nil
}

// Counts returns stored place volume.
func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE created_at > now() - interval '24 hours')
		FROM places`).Scan(&c.Total, &c.Active, &c.Recent24)
	if err != nil {
		return Counts{}, eris.Wrap(err, "place: counts")
	}
	return c, nil
}

func scanPlace(row pgx.Row) (*Place, error) {
	var p Place
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Type,
		&p.Latitude, &p.Longitude,
		&p.Address, &p.City, &p.District, &p.PostalCode, &p.Phone, &p.Website,
		&p.GooglePlaceID, &p.MainCategories, &p.SecondaryCategories, &p.CuisineTypes,
		&p.GoogleRating, &p.GoogleRatingCount, &p.PriceLevel, &p.GooglePlaceURL,
		&p.OpeningHours, &p.IsOpenNow, &p.BusinessStatus, &p.SuitableFor,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
