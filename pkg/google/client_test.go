package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1000", q.Get("radius"))
		assert.Equal(t, "restaurant", q.Get("type"))
		assert.Equal(t, "tapas", q.Get("keyword"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "abc123",
					"name": "Casa Lola",
					"types": ["restaurant", "food"],
					"geometry": {"location": {"lat": 41.65, "lng": -0.88}},
					"rating": 4.5,
					"user_ratings_total": 320,
					"vicinity": "Calle Mayor 1, Zaragoza"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	places, err := client.NearbySearch(context.Background(), 41.65, -0.88, 1000, "restaurant", "tapas")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "abc123", places[0].PlaceID)
	assert.Equal(t, "Casa Lola", places[0].Name)
	assert.Equal(t, 41.65, places[0].Geometry.Location.Lat)
	assert.Equal(t, 4.5, places[0].Rating)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	places, err := client.NearbySearch(context.Background(), 41.65, -0.88, 1000, "", "")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestNearbySearch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "quota exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := client.NearbySearch(context.Background(), 41.65, -0.88, 1000, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNearbySearch_RequestDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "invalid key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))

	_, err := client.NearbySearch(context.Background(), 41.65, -0.88, 1000, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestDenied))
}

func TestNearbySearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := client.NearbySearch(context.Background(), 41.65, -0.88, 1000, "", "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestPlaceDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("place_id"))
		assert.NotEmpty(t, r.URL.Query().Get("fields"))

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "abc123",
				"name": "Casa Lola",
				"formatted_address": "Calle Mayor 1, 50001 Zaragoza, Spain",
				"formatted_phone_number": "976 12 34 56",
				"website": "https://casalola.example",
				"opening_hours": {"open_now": true},
				"reviews": [
					{"author_name": "Ana", "rating": 5, "text": "great", "time": 1700000000}
				],
				"photos": [
					{"photo_reference": "ref1", "width": 1200, "height": 800}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	place, err := client.PlaceDetails(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Casa Lola", place.Name)
	assert.Equal(t, "976 12 34 56", place.FormattedPhoneNumber)
	require.NotNil(t, place.OpeningHours)
	require.NotNil(t, place.OpeningHours.OpenNow)
	assert.True(t, *place.OpeningHours.OpenNow)
	require.Len(t, place.Reviews, 1)
	require.NotNil(t, place.Reviews[0].Rating)
	assert.Equal(t, 5.0, *place.Reviews[0].Rating)
	require.Len(t, place.Photos, 1)
	assert.Equal(t, "ref1", place.Photos[0].PhotoReference)
}

func TestPlaceDetails_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := client.PlaceDetails(context.Background(), "abc123")
	assert.Error(t, err)
}

func TestPhotoURL(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("https://example.test/place"))

	url := client.PhotoURL("ref1", 800)
	assert.Contains(t, url, "https://example.test/place/photo?")
	assert.Contains(t, url, "maxwidth=800")
	assert.Contains(t, url, "photoreference=ref1")
	assert.Contains(t, url, "key=test-key")
}
