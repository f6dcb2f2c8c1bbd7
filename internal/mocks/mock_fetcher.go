package mocks

import (
	"context"

	"shopsearch/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of fetcher.Service
type MockFetcher struct {
	mock.Mock
}

// Search mocks the Search method of fetcher.Service
func (m *MockFetcher) Search(ctx context.Context, params models.SearchParameters) (models.SearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.SearchResult), args.Error(1)
}
