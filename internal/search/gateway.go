package search

import (
	"context"
	"errors"
	"time"

	"shopsearch/internal/cache/searchCache"
	"shopsearch/internal/fetcher"
	"shopsearch/internal/logger"
	"shopsearch/internal/metrics"
	"shopsearch/internal/models"
	"shopsearch/internal/parser"
	"shopsearch/internal/query"

	"golang.org/x/sync/singleflight"
)

// BuyQualifier is appended to the query by the search view
const BuyQualifier = " купить"

// Gateway implements Service
type Gateway struct {
	fetcher fetcher.Service
	cache   searchCache.Service
	parser  parser.Service
	logger  logger.Service

	// inflight collapses concurrent misses for the same key into one remote call
	inflight singleflight.Group
}

// NewService creates the gateway. It refuses to build without an API key.
func NewService(
	fetcher fetcher.Service,
	cache searchCache.Service,
	parser parser.Service,
	logger logger.Service,
	apiKey string,
) (Service, error) {
	gateway, err := newGateway(fetcher, cache, parser, logger, apiKey)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

func newGateway(
	fetcher fetcher.Service,
	cache searchCache.Service,
	parser parser.Service,
	logger logger.Service,
	apiKey string,
) (*Gateway, error) {
	if apiKey == "" {
		return nil, models.ErrAPIKeyMissing
	}
	return &Gateway{
		fetcher: fetcher,
		cache:   cache,
		parser:  parser,
		logger:  logger,
	}, nil
}

// Search resolves params from the cache or, on a miss, from the search API.
// Only results with organic results are stored; errors and empty results always go remote.
func (g *Gateway) Search(ctx context.Context, params models.SearchParameters) models.SearchResult {
	start := time.Now()
	target := targetName(params)

	cached, err := g.cache.Get(ctx, params)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(metrics.CacheHit)
		g.logger.LogSuccess(ctx, logger.OpCacheHit, target, "Retrieved search result from cache", map[string]interface{}{
			"engine":      params.Engine,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return cached
	case errors.Is(err, models.ErrCacheUnavailable):
		metrics.RecordCacheLookup(metrics.CacheMiss)
		g.logger.LogInfo(ctx, logger.OpCacheMiss, "Cache miss for search", map[string]interface{}{
			"engine": params.Engine,
			"target": target,
		})
	default:
		metrics.RecordCacheLookup(metrics.CacheError)
		g.logger.LogError(ctx, logger.OpCacheMiss, target, "Cache lookup failed, calling search API", err, models.LogSeverityLow, nil)
	}

	// The remote call outlives a disconnecting caller so the cache still gets populated
	detached := context.WithoutCancel(ctx)
	value, _, shared := g.inflight.Do(searchCache.Key(params), func() (interface{}, error) {
		return g.fetchAndStore(detached, params), nil
	})
	if shared {
		metrics.RecordSharedCall()
	}

	return searchCache.Clone(value.(models.SearchResult))
}

// fetchAndStore runs CALL_REMOTE -> POST_PROCESS -> MAYBE_STORE
func (g *Gateway) fetchAndStore(ctx context.Context, params models.SearchParameters) models.SearchResult {
	start := time.Now()
	target := targetName(params)

	result, err := g.fetcher.Search(ctx, params)
	if err != nil {
		searchErr := models.NewSearchError(params, "Search API request failed", err)
		g.logger.LogError(ctx, logger.OpFetchResults, target, "Search API request failed", searchErr, models.LogSeverityMedium, map[string]interface{}{
			"engine":      params.Engine,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return models.ErrorResult(searchErr.Error())
	}

	priced := g.parser.Annotate(result)

	g.logger.LogSuccess(ctx, logger.OpFetchResults, target, "Fetched search results", map[string]interface{}{
		"engine":        params.Engine,
		"organic_count": len(result.OrganicResults()),
		"priced_count":  priced,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	if !models.Cacheable(result) {
		g.logger.LogInfo(ctx, logger.OpCacheSet, "Result has no organic results, not caching", map[string]interface{}{
			"engine": params.Engine,
			"target": target,
		})
		return result
	}

	if err := g.cache.Set(ctx, params, result); err != nil {
		// a failed store does not fail the request
		g.logger.LogError(ctx, logger.OpCacheSet, target, "Failed to cache search result", err, models.LogSeverityLow, nil)
	}

	return result
}

// Shopping runs the default google_shopping lookup. An empty query yields an empty result.
func (g *Gateway) Shopping(ctx context.Context, opts query.Options) models.SearchResult {
	if opts.Query == "" {
		return models.SearchResult{}
	}
	return g.Search(ctx, query.Normalize(opts))
}

// SearchView queries the general engine with the buy qualifier and keeps only priced items.
// Filtering happens after the gateway so the cached value keeps every item.
func (g *Gateway) SearchView(ctx context.Context, opts query.Options) models.SearchResult {
	if opts.Query == "" {
		return models.SearchResult{}
	}

	opts.Engine = query.EngineGoogle
	opts.Query += BuyQualifier

	result := g.Search(ctx, query.Normalize(opts))
	if _, failed := result.Error(); failed {
		return result
	}

	filtered := g.parser.FilterPriced(result)
	g.logger.LogSuccess(ctx, logger.OpSearchView, opts.Query, "Built priced search view", map[string]interface{}{
		"organic_count": len(result.OrganicResults()),
		"priced_count":  len(filtered.OrganicResults()),
	})
	return filtered
}

// ProductOffers looks up the offers for a single product
func (g *Gateway) ProductOffers(ctx context.Context, productID, location string) models.SearchResult {
	if productID == "" {
		return models.SearchResult{}
	}
	return g.Search(ctx, query.Normalize(query.Options{
		ProductID: productID,
		Engine:    query.EngineProductOffers,
		Location:  location,
	}))
}

// targetName picks the human-meaningful part of params for log entries
func targetName(params models.SearchParameters) string {
	if params.Query != "" {
		return params.Query
	}
	return params.ProductID
}
