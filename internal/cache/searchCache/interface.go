package searchCache

import (
	"context"

	"shopsearch/internal/models"
)

// Service defines the interface for search result cache operations
type Service interface {
	Get(ctx context.Context, params models.SearchParameters) (models.SearchResult, error)
	Set(ctx context.Context, params models.SearchParameters, result models.SearchResult) error
	Delete(ctx context.Context, params models.SearchParameters) error
}
