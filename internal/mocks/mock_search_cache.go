package mocks

import (
	"context"

	"shopsearch/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockSearchCache is a mock implementation of searchCache.Service
type MockSearchCache struct {
	mock.Mock
}

// Get mocks the Get method of searchCache.Service
func (m *MockSearchCache) Get(ctx context.Context, params models.SearchParameters) (models.SearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.SearchResult), args.Error(1)
}

// Set mocks the Set method of searchCache.Service
func (m *MockSearchCache) Set(ctx context.Context, params models.SearchParameters, result models.SearchResult) error {
	args := m.Called(ctx, params, result)
	return args.Error(0)
}

// Delete mocks the Delete method of searchCache.Service
func (m *MockSearchCache) Delete(ctx context.Context, params models.SearchParameters) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
