package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auphere/places-sync/internal/geo"
	"github.com/auphere/places-sync/pkg/google"
)

// testOptions removes pacing so the suite runs fast.
func testOptions() Options {
	return Options{RequestsPerSecond: 10000}
}

// registerTestCities adds degenerate boundaries with known cell counts.
func registerTestCities() {
	// Single point boundary: exactly one cell.
	geo.Register(geo.Boundary{Name: "Unicell", MinLat: 0, MaxLat: 0, MinLng: 0, MaxLng: 0})
	// One row, five columns at 1.5 km spacing.
	geo.Register(geo.Boundary{Name: "Gridtown", MinLat: 0, MaxLat: 0, MinLng: 0, MaxLng: 0.06})
}

func basicPlace(id, name string) google.Place {
	return google.Place{
		PlaceID:  id,
		Name:     name,
		Types:    []string{"restaurant"},
		Geometry: google.Geometry{Location: google.LatLng{Lat: 41.65, Lng: -0.88}},
	}
}

func TestSyncCity_CreatesPlaces(t *testing.T) {
	registerTestCities()

	rating := 5.0
	detailed := basicPlace("p1", "Casa Lola")
	detailed.FormattedAddress = "Calle Mayor 1, Zaragoza"
	detailed.Reviews = []google.Review{
		{AuthorName: "Ana", Rating: &rating, Text: "great", Time: 1700000000},
		{AuthorName: "Luis", Text: "no rating, dropped"},
	}
	detailed.Photos = []google.Photo{
		{PhotoReference: "ref1", Width: 1200, Height: 800},
		{PhotoReference: "ref2", Width: 640, Height: 480},
	}

	source := &mockSource{
		nearbyResults: [][]google.Place{
			{basicPlace("p1", "Casa Lola"), basicPlace("p2", "Bar Pilar")},
		},
		details: map[string]*google.Place{"p1": &detailed},
	}
	store := &mockPlaceStore{}
	syncer := New(store, source, testOptions())

	stats, err := syncer.SyncCity(context.Background(), "Unicell", "restaurant", 0, 0)
	require.NoError(t, err)

	// One nearby call plus one successful detail lookup; p2's lookup failed
	// and fell back to the basic record.
	assert.Equal(t, 2, stats.APIRequests)
	assert.Equal(t, 2, stats.PlacesRetrieved)
	assert.Equal(t, 2, stats.PlacesCreated)
	assert.Zero(t, stats.PlacesSkipped)
	assert.Zero(t, stats.PlacesFailed)
	assert.Equal(t, 1, stats.ReviewsCreated)
	assert.Equal(t, 2, stats.PhotosCreated)
	assert.Empty(t, stats.Errors)
	require.NotNil(t, stats.CompletedAt)

	// The enriched record flowed into the store.
	require.Len(t, store.upserts, 2)
	require.NotNil(t, store.upserts[0].Address)
	assert.Equal(t, "Calle Mayor 1, Zaragoza", *store.upserts[0].Address)

	// Review dedup key embeds the place ID and review time.
	require.Len(t, store.reviews, 1)
	require.NotNil(t, store.reviews[0].SourceID)
	assert.Equal(t, "p1_1700000000", *store.reviews[0].SourceID)

	// First photo is primary, listed order preserved, both widths generated.
	require.Len(t, store.photos, 2)
	assert.True(t, store.photos[0].IsPrimary)
	assert.False(t, store.photos[1].IsPrimary)
	assert.Equal(t, 0, store.photos[0].DisplayOrder)
	assert.Equal(t, 1, store.photos[1].DisplayOrder)
	assert.Contains(t, store.photos[0].PhotoURL, "maxwidth=800")
	require.NotNil(t, store.photos[0].ThumbnailURL)
	assert.Contains(t, *store.photos[0].ThumbnailURL, "maxwidth=400")
}

func TestSyncCity_SecondRunSkips(t *testing.T) {
	registerTestCities()

	store := &mockPlaceStore{}
	results := [][]google.Place{{basicPlace("p1", "Casa Lola"), basicPlace("p2", "Bar Pilar")}}

	first := New(store, &mockSource{nearbyResults: results}, testOptions())
	stats, err := first.SyncCity(context.Background(), "Unicell", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PlacesCreated)

	second := New(store, &mockSource{nearbyResults: results}, testOptions())
	stats, err = second.SyncCity(context.Background(), "Unicell", "", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, stats.PlacesCreated)
	assert.Equal(t, 2, stats.PlacesSkipped)
}

func TestSyncCity_RateLimitAborts(t *testing.T) {
	registerTestCities()

	source := &mockSource{
		nearbyResults: [][]google.Place{{basicPlace("p1", "Casa Lola")}},
		nearbyErrs:    []error{nil, google.ErrRateLimited},
	}
	store := &mockPlaceStore{}
	syncer := New(store, source, testOptions())

	stats, err := syncer.SyncCity(context.Background(), "Gridtown", "", 1.5, 1000)
	require.NoError(t, err)

	// Five cells generated; the second hit the limit and stopped the run.
	assert.Equal(t, 2, source.nearbyCalls)
	assert.Equal(t, 1, stats.APIRequests)
	assert.Equal(t, 1, stats.PlacesRetrieved)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Gridtown-2")
	require.NotNil(t, stats.CompletedAt)
}

func TestSyncCity_SourceErrorContinues(t *testing.T) {
	registerTestCities()

	source := &mockSource{
		nearbyErrs: []error{eris.New("transient upstream failure")},
		nearbyResults: [][]google.Place{
			nil, {basicPlace("p1", "Casa Lola")},
		},
	}
	store := &mockPlaceStore{}
	syncer := New(store, source, testOptions())

	stats, err := syncer.SyncCity(context.Background(), "Gridtown", "", 1.5, 1000)
	require.NoError(t, err)

	// All five cells were attempted despite the first failing.
	assert.Equal(t, 5, source.nearbyCalls)
	assert.Equal(t, 4, stats.APIRequests)
	assert.Equal(t, 1, stats.PlacesRetrieved)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Gridtown-1")
}

func TestSyncCity_StoreFailure(t *testing.T) {
	registerTestCities()

	source := &mockSource{
		nearbyResults: [][]google.Place{{basicPlace("p1", "Casa Lola")}},
	}
	store := &mockPlaceStore{upsertErr: eris.New("disk full")}
	syncer := New(store, source, testOptions())

	stats, err := syncer.SyncCity(context.Background(), "Unicell", "", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PlacesFailed)
	assert.Zero(t, stats.PlacesCreated)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Casa Lola")
	assert.Empty(t, store.reviews)
	assert.Empty(t, store.photos)
}

func TestSyncCity_UnknownCity(t *testing.T) {
	syncer := New(&mockPlaceStore{}, &mockSource{}, testOptions())

	stats, err := syncer.SyncCity(context.Background(), "Atlantis", "", 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, geo.ErrUnknownCity))
	assert.Nil(t, stats)
}

func TestSyncCity_ContextCancelled(t *testing.T) {
	registerTestCities()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &mockSource{}
	syncer := New(&mockPlaceStore{}, source, testOptions())

	stats, err := syncer.SyncCity(ctx, "Gridtown", "", 1.5, 1000)
	require.NoError(t, err)
	assert.Zero(t, source.nearbyCalls)
	assert.Zero(t, stats.APIRequests)
	require.NotNil(t, stats.CompletedAt)
}

func TestSyncCities_ContinuesAfterFailure(t *testing.T) {
	registerTestCities()

	source := &mockSource{
		nearbyResults: [][]google.Place{{basicPlace("p1", "Casa Lola")}},
	}
	syncer := New(&mockPlaceStore{}, source, testOptions())

	all := syncer.SyncCities(context.Background(), []string{"Unicell", "Atlantis"}, "")
	require.Len(t, all, 2)

	assert.Equal(t, "Unicell", all[0].City)
	assert.Equal(t, 1, all[0].PlacesCreated)

	assert.Equal(t, "Atlantis", all[1].City)
	require.Len(t, all[1].Errors, 1)
	assert.Contains(t, all[1].Errors[0], "sync failed")
	require.NotNil(t, all[1].CompletedAt)
}
