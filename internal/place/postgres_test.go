package place

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeRowColumns = []string{
	"id", "name", "description", "type", "latitude", "longitude",
	"address", "city", "district", "postal_code", "phone", "website", "google_place_id",
	"main_categories", "secondary_categories", "cuisine_types",
	"google_rating", "google_rating_count", "price_level", "google_place_url",
	"opening_hours", "is_open_now", "business_status", "suitable_for",
	"is_active", "created_at", "updated_at",
}

func placeRow(id uuid.UUID, name, googlePlaceID string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(placeRowColumns).AddRow(
		id, name, (*string)(nil), "restaurant", 41.65, -0.88,
		(*string)(nil), "Zaragoza", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), &googlePlaceID,
		[]string{"restaurant"}, []string{}, []string{},
		(*float64)(nil), (*int)(nil), (*int)(nil), (*string)(nil),
		[]byte(nil), (*bool)(nil), (*string)(nil), []string{},
		true, now, now,
	)
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newTestRequest(googlePlaceID string) CreatePlaceRequest {
	return CreatePlaceRequest{
		Name:           "Casa Lola",
		Type:           "restaurant",
		Latitude:       41.65,
		Longitude:      -0.88,
		City:           "Zaragoza",
		GooglePlaceID:  &googlePlaceID,
		MainCategories: []string{"restaurant"},
	}
}

func TestPostgresStore_UpsertPlace_Created(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO places`).
		WithArgs(anyArgs(23)...).
		WillReturnRows(placeRow(id, "Casa Lola", "abc123"))

	p, created, err := store.UpsertPlace(context.Background(), newTestRequest("abc123"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Casa Lola", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlace_Updated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New()

	// Conflict: the insert returns no row, so the existing row is updated.
	mock.ExpectQuery(`INSERT INTO places`).
		WithArgs(anyArgs(23)...).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`UPDATE places SET`).
		WithArgs(anyArgs(22)...).
		WillReturnRows(placeRow(id, "Casa Lola", "abc123"))

	p, created, err := store.UpsertPlace(context.Background(), newTestRequest("abc123"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertReview(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec(`INSERT INTO reviews`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sourceID := "abc123_1700000000"
	err = store.UpsertReview(context.Background(), CreateReviewRequest{
		PlaceID:  uuid.New(),
		Source:   "google",
		SourceID: &sourceID,
		Rating:   5,
		PostedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPhoto(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec(`INSERT INTO photos`).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ref := "ref1"
	err = store.UpsertPhoto(context.Background(), CreatePhotoRequest{
		PlaceID:              uuid.New(),
		Source:               "google",
		SourcePhotoReference: &ref,
		PhotoURL:             "https://example.test/photo",
		IsPrimary:            true,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM places WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetByID(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStore_GetByIdentifier_UUIDFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM places WHERE id`).
		WithArgs(id.String()).
		WillReturnRows(placeRow(id, "Casa Lola", "abc123"))

	p, err := store.GetByIdentifier(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByIdentifier_GoogleFallback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM places WHERE google_place_id`).
		WithArgs("ChIJnotauuid").
		WillReturnRows(placeRow(id, "Casa Lola", "ChIJnotauuid"))

	p, err := store.GetByIdentifier(context.Background(), "ChIJnotauuid")
	require.NoError(t, err)
	assert.Equal(t, "Casa Lola", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Deactivate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New().String()

	mock.ExpectExec(`UPDATE places SET is_active = false`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, store.Deactivate(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Deactivate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	id := uuid.New().String()

	mock.ExpectExec(`UPDATE places SET is_active = false`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.Deactivate(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStore_Counts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "active", "recent"}).
			AddRow(int64(120), int64(110), int64(15)))

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), counts.Total)
	assert.Equal(t, int64(110), counts.Active)
	assert.Equal(t, int64(15), counts.Recent24)
}
