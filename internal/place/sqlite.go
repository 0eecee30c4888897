package place

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. Locations are kept
// as plain lat/lng columns; upsert semantics match the Postgres store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "place: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "place: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS places (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	description          TEXT,
	type                 TEXT NOT NULL,
	latitude             REAL NOT NULL,
	longitude            REAL NOT NULL,
	address              TEXT,
	city                 TEXT NOT NULL,
	district             TEXT,
	postal_code          TEXT,
	phone                TEXT,
	website              TEXT,
	google_place_id      TEXT UNIQUE,
	main_categories      TEXT NOT NULL DEFAULT '[]',
	secondary_categories TEXT NOT NULL DEFAULT '[]',
	cuisine_types        TEXT NOT NULL DEFAULT '[]',
	google_rating        REAL,
	google_rating_count  INTEGER,
	price_level          INTEGER,
	google_place_url     TEXT,
	opening_hours        TEXT,
	is_open_now          INTEGER,
	business_status      TEXT,
	suitable_for         TEXT NOT NULL DEFAULT '[]',
	is_active            INTEGER NOT NULL DEFAULT 1,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	id          TEXT PRIMARY KEY,
	place_id    TEXT NOT NULL REFERENCES places(id) ON DELETE CASCADE,
	source      TEXT NOT NULL,
	source_id   TEXT,
	author      TEXT,
	rating      REAL NOT NULL,
	text        TEXT,
	posted_at   DATETIME NOT NULL,
	is_verified INTEGER NOT NULL DEFAULT 0,
	has_photo   INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	UNIQUE (source, source_id)
);

CREATE TABLE IF NOT EXISTS photos (
	id                     TEXT PRIMARY KEY,
	place_id               TEXT NOT NULL REFERENCES places(id) ON DELETE CASCADE,
	source                 TEXT NOT NULL,
	source_photo_reference TEXT,
	photo_url              TEXT NOT NULL,
	thumbnail_url          TEXT,
	width                  INTEGER,
	height                 INTEGER,
	attribution            TEXT,
	is_primary             INTEGER NOT NULL DEFAULT 0,
	display_order          INTEGER NOT NULL DEFAULT 0,
	created_at             DATETIME NOT NULL,
	UNIQUE (source, source_photo_reference)
);

CREATE INDEX IF NOT EXISTS idx_places_city ON places(city);
CREATE INDEX IF NOT EXISTS idx_places_type ON places(type);
CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id);
CREATE INDEX IF NOT EXISTS idx_photos_place_id ON photos(place_id);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "place: migrate sqlite")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqlitePlaceColumns = `id, name, description, type, latitude, longitude,
	address, city, district, postal_code, phone, website, google_place_id,
	main_categories, secondary_categories, cuisine_types,
	google_rating, google_rating_count, price_level, google_place_url,
	opening_hours, is_open_now, business_status, suitable_for,
	is_active, created_at, updated_at`

// UpsertPlace inserts a place if its google_place_id is new, detected via
// ON CONFLICT DO NOTHING and the affected row count.
func (s *SQLiteStore) UpsertPlace(ctx context.Context, req CreatePlaceRequest) (*Place, bool, error) {
	now := time.Now().UTC()
	id := uuid.New().String()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO places (
			id, name, description, type, latitude, longitude,
			address, city, district, postal_code, phone, website, google_place_id,
			main_categories, secondary_categories, cuisine_types,
			google_rating, google_rating_count, price_level, google_place_url,
			opening_hours, is_open_now, business_status, suitable_for,
			is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (google_place_id) DO NOTHING`,
		id, req.Name, req.Description, req.Type, req.Latitude, req.Longitude,
		req.Address, req.City, req.District, req.PostalCode, req.Phone, req.Website,
		req.GooglePlaceID, marshalList(req.MainCategories), marshalList(req.SecondaryCategories),
		marshalList(req.CuisineTypes), req.GoogleRating, req.GoogleRatingCount,
		req.PriceLevel, req.GooglePlaceURL, rawOrNil(req.OpeningHours), req.IsOpenNow,
		req.BusinessStatus, marshalList(req.SuitableFor), now, now,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "place: sqlite insert %s", req.Name)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, eris.Wrap(err, "place: sqlite rows affected")
	}

	created := n == 1
	if !created {
		_, err = s.db.ExecContext(ctx, `
			UPDATE places SET
				name = ?, description = ?, type = ?, latitude = ?, longitude = ?,
				address = ?, city = ?, district = ?, postal_code = ?, phone = ?,
				website = ?, main_categories = ?, secondary_categories = ?,
				cuisine_types = ?, google_rating = ?, google_rating_count = ?,
				price_level = ?, google_place_url = ?, opening_hours = ?,
				is_open_now = ?, business_status = ?, suitable_for = ?,
				is_active = 1, updated_at = ?
			WHERE google_place_id = ?`,
			req.Name, req.Description, req.Type, req.Latitude, req.Longitude,
			req.Address, req.City, req.District, req.PostalCode, req.Phone,
			req.Website, marshalList(req.MainCategories), marshalList(req.SecondaryCategories),
			marshalList(req.CuisineTypes), req.GoogleRating, req.GoogleRatingCount,
			req.PriceLevel, req.GooglePlaceURL, rawOrNil(req.OpeningHours),
			req.IsOpenNow, req.BusinessStatus, marshalList(req.SuitableFor),
			now, req.GooglePlaceID,
		)
		if err != nil {
			return nil, false, eris.Wrapf(err, "place: sqlite update %s", req.Name)
		}
	}

	var p *Place
	if req.GooglePlaceID != nil {
		p, err = s.getWhere(ctx, "google_place_id = ?", *req.GooglePlaceID)
	} else {
		p, err = s.getWhere(ctx, "id = ?", id)
	}
	if err != nil {
		return nil, false, err
	}
	return p, created, nil
}

// UpsertReview inserts or refreshes a review keyed on (source, source_id).
func (s *SQLiteStore) UpsertReview(ctx context.Context, req CreateReviewRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (
			id, place_id, source, source_id, author,
			rating, text, posted_at, is_verified, has_photo, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, source_id) DO UPDATE SET
			rating = excluded.rating,
			text = excluded.text,
			posted_at = excluded.posted_at,
			has_photo = excluded.has_photo`,
		uuid.New().String(), req.PlaceID.String(), req.Source, req.SourceID, req.Author,
		req.Rating, req.Text, req.PostedAt.UTC(), req.IsVerified, req.HasPhoto,
		time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "place: sqlite upsert review")
	}
	return nil
}

// UpsertPhoto inserts or refreshes a photo keyed on
// (source, source_photo_reference).
func (s *SQLiteStore) UpsertPhoto(ctx context.Context, req CreatePhotoRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (
			id, place_id, source, source_photo_reference, photo_url,
			thumbnail_url, width, height, attribution, is_primary, display_order,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, source_photo_reference) DO UPDATE SET
			photo_url = excluded.photo_url,
			thumbnail_url = excluded.thumbnail_url,
			width = excluded.width,
			height = excluded.height,
			attribution = excluded.attribution,
			is_primary = excluded.is_primary,
			display_order = excluded.display_order`,
		uuid.New().String(), req.PlaceID.String(), req.Source, req.SourcePhotoReference,
		req.PhotoURL, req.ThumbnailURL, req.Width, req.Height, req.Attribution,
		req.IsPrimary, req.DisplayOrder, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "place: sqlite upsert photo")
	}
	return nil
}

// GetByID fetches an active place by UUID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Place, error) {
	return s.getWhere(ctx, "id = ? AND is_active = 1", id)
}

// GetByGooglePlaceID fetches an active place by Google place ID.
func (s *SQLiteStore) GetByGooglePlaceID(ctx context.Context, googlePlaceID string) (*Place, error) {
	return s.getWhere(ctx, "google_place_id = ? AND is_active = 1", googlePlaceID)
}

// GetByIdentifier tries a UUID lookup first, then Google place ID.
func (s *SQLiteStore) GetByIdentifier(ctx context.Context, identifier string) (*Place, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.GetByID(ctx, id.String())
	}
	return s.GetByGooglePlaceID(ctx, identifier)
}

// Deactivate soft-deletes a place.
func (s *SQLiteStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE places SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "place: sqlite deactivate %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "place: sqlite rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "place: deactivate %s", id)
	}
	return nil
}

// Counts returns stored place volume.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(is_active), 0),
			COALESCE(SUM(CASE WHEN created_at > ? THEN 1 ELSE 0 END), 0)
		FROM places`,
		time.Now().UTC().Add(-24*time.Hour),
	).Scan(&c.Total, &c.Active, &c.Recent24)
	if err != nil {
		return Counts{}, eris.Wrap(err, "place: sqlite counts")
	}
	return c, nil
}

func (s *SQLiteStore) getWhere(ctx context.Context, where string, arg any) (*Place, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePlaceColumns+` FROM places WHERE `+where, arg)

	var (
		p                           Place
		idStr                       string
		mainCats, secCats           string
		cuisines, suitable          string
		openingHours                sql.NullString
		isOpenNow                   sql.NullBool
		description, address        sql.NullString
		district, postalCode        sql.NullString
		phone, website, googleID    sql.NullString
		placeURL, businessStatus    sql.NullString
		googleRating                sql.NullFloat64
		googleRatingCnt, priceLevel sql.NullInt64
	)

	err := row.Scan(
		&idStr, &p.Name, &description, &p.Type, &p.Latitude, &p.Longitude,
		&address, &p.City, &district, &postalCode, &phone, &website, &googleID,
		&mainCats, &secCats, &cuisines,
		&googleRating, &googleRatingCnt, &priceLevel, &placeURL,
		&openingHours, &isOpenNow, &businessStatus, &suitable,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "place: sqlite get")
	}
	if err != nil {
		return nil, eris.Wrap(err, "place: sqlite scan")
	}

	p.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, eris.Wrapf(err, "place: sqlite parse id %s", idStr)
	}

	p.Description = nullString(description)
	p.Address = nullString(address)
	p.District = nullString(district)
	p.PostalCode = nullString(postalCode)
	p.Phone = nullString(phone)
	p.Website = nullString(website)
	p.GooglePlaceID = nullString(googleID)
	p.GooglePlaceURL = nullString(placeURL)
	p.BusinessStatus = nullString(businessStatus)
	if googleRating.Valid {
		p.GoogleRating = &googleRating.Float64
	}
	if googleRatingCnt.Valid {
		n := int(googleRatingCnt.Int64)
		p.GoogleRatingCount = &n
	}
	if priceLevel.Valid {
		n := int(priceLevel.Int64)
		p.PriceLevel = &n
	}
	if openingHours.Valid {
		p.OpeningHours = json.RawMessage(openingHours.String)
	}
	if isOpenNow.Valid {
		p.IsOpenNow = &isOpenNow.Bool
	}
	p.MainCategories = unmarshalList(mainCats)
	p.SecondaryCategories = unmarshalList(secCats)
	p.CuisineTypes = unmarshalList(cuisines)
	p.SuitableFor = unmarshalList(suitable)

	return &p, nil
}

func marshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
