package search

import (
	"context"

	"shopsearch/internal/models"
	"shopsearch/internal/query"
)

// Service defines the cached search gateway and the views built on it.
// Failures are reported as {error: message} results, never as Go errors.
type Service interface {
	Search(ctx context.Context, params models.SearchParameters) models.SearchResult
	Shopping(ctx context.Context, opts query.Options) models.SearchResult
	SearchView(ctx context.Context, opts query.Options) models.SearchResult
	ProductOffers(ctx context.Context, productID, location string) models.SearchResult
}
