package searchCache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopsearch/internal/cache"
	"shopsearch/internal/models"
)

const keyPrefix = "search:"

// searchCache implements Service using a generic cache
type searchCache struct {
	cache cache.Service
	ttl   time.Duration
}

// New creates a new search result cache whose entries live for ttl
func New(cache cache.Service, ttl time.Duration) Service {
	return &searchCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Key returns the cache key for params
func Key(params models.SearchParameters) string {
	return keyPrefix + params.CacheKey()
}

// Get retrieves a search result from the cache.
// Entries failing models.Cacheable are reported as misses.
func (s *searchCache) Get(ctx context.Context, params models.SearchParameters) (models.SearchResult, error) {
	value, err := s.cache.Get(ctx, Key(params))
	if err != nil {
		return nil, err
	}

	var result models.SearchResult
	switch v := value.(type) {
	case models.SearchResult:
		// Memory cache returns the stored object
		result = Clone(v)
	case map[string]interface{}:
		result = Clone(v)
	case string:
		// Redis cache returns JSON string
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached search result: %w", err)
		}
	default:
		return nil, fmt.Errorf("unexpected type in cache: %T", v)
	}

	if !models.Cacheable(result) {
		return nil, models.ErrCacheUnavailable
	}

	return result, nil
}

// Set stores a copy of result. Results failing models.Cacheable are refused.
func (s *searchCache) Set(ctx context.Context, params models.SearchParameters, result models.SearchResult) error {
	if !models.Cacheable(result) {
		return models.ErrNotCacheable
	}
	return s.cache.Set(ctx, Key(params), Clone(result), s.ttl)
}

// Delete removes a search result from the cache
func (s *searchCache) Delete(ctx context.Context, params models.SearchParameters) error {
	return s.cache.Delete(ctx, Key(params))
}

// Clone deep-copies a decoded JSON object so callers never share nested maps or slices
func Clone(result map[string]interface{}) models.SearchResult {
	if result == nil {
		return nil
	}
	return cloneValue(result).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.SearchResult:
		return cloneValue(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
