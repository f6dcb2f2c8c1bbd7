package fetcher

import (
	"context"

	"shopsearch/internal/models"
)

// Service defines the interface for calling the remote search API
// External packages should use this interface, not the concrete implementations
type Service interface {
	Search(ctx context.Context, params models.SearchParameters) (models.SearchResult, error)
}
