package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIKeyMissing indicates that SEARCH_API_KEY was not configured
	ErrAPIKeyMissing = errors.New("search API key not configured")

	// ErrFetchTimeout indicates that the search API did not answer in time
	ErrFetchTimeout = errors.New("timeout while calling search API")

	// ErrUpstreamStatus indicates a non-2xx answer from the search API
	ErrUpstreamStatus = errors.New("unexpected search API status")

	// ErrInvalidResponse indicates that the search API body was not a JSON object
	ErrInvalidResponse = errors.New("invalid search API response")

	// ErrCacheUnavailable indicates a cache miss or an unreachable cache backend
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrNotCacheable indicates a result rejected by the admission predicate
	ErrNotCacheable = errors.New("search result is not cacheable")
)

// SearchError wraps a failure of a single remote search call
type SearchError struct {
	Engine  string
	Query   string
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new search-specific error
func NewSearchError(params SearchParameters, message string, err error) *SearchError {
	query := params.Query
	if query == "" {
		query = params.ProductID
	}
	return &SearchError{
		Engine:  params.Engine,
		Query:   query,
		Message: message,
		Err:     err,
	}
}
