package google

import "github.com/rotisserie/eris"

var (
	// ErrRateLimited indicates the API returned OVER_QUERY_LIMIT.
	ErrRateLimited = eris.New("google: rate limited")

	// ErrRequestDenied indicates the API rejected the request, typically a
	// bad key or malformed parameters.
	ErrRequestDenied = eris.New("google: request denied")
)
