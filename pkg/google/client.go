// Package google implements a client for the Google Places Web Service.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailFields is the field mask requested from Place Details.
const detailFields = "place_id,name,types,geometry,formatted_address,vicinity," +
	"address_components,rating,user_ratings_total,price_level,business_status," +
	"opening_hours,formatted_phone_number,international_phone_number,website,url," +
	"reviews,photos"

// Client performs Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, lat, lng float64, radiusM int, placeType, keyword string) ([]Place, error)
	PlaceDetails(ctx context.Context, placeID string) (*Place, error)
	PhotoURL(photoReference string, maxWidth int) string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []Place `json:"results"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       *Place `json:"result"`
}

// NearbySearch fetches places around a point. placeType and keyword are
// optional filters. ZERO_RESULTS yields an empty slice, not an error.
func (c *httpClient) NearbySearch(ctx context.Context, lat, lng float64, radiusM int, placeType, keyword string) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", strconv.Itoa(radiusM))
	if placeType != "" {
		params.Set("type", placeType)
	}
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	params.Set("key", c.apiKey)

	var result searchResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "google: nearby search")
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// PlaceDetails fetches the full record for a place ID.
func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("key", c.apiKey)

	var result detailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, eris.Wrapf(err, "google: place details %s", placeID)
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, err
	}
	if result.Result == nil {
		return nil, eris.Errorf("google: place details %s: empty result", placeID)
	}
	return result.Result, nil
}

// PhotoURL builds the URL that serves a photo reference at the given width.
func (c *httpClient) PhotoURL(photoReference string, maxWidth int) string {
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("photoreference", photoReference)
	params.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + params.Encode()
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

// checkStatus maps a Places API status string to an error. OK and
// ZERO_RESULTS are success.
func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "OVER_QUERY_LIMIT":
		return eris.Wrapf(ErrRateLimited, "google: %s", message)
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return eris.Wrapf(ErrRequestDenied, "google: %s %s", status, message)
	default:
		return eris.Errorf("google: unexpected status %s: %s", status, message)
	}
}
