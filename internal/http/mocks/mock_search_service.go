package mocks

import (
	"context"

	"shopsearch/internal/models"
	"shopsearch/internal/query"

	"github.com/stretchr/testify/mock"
)

// MockSearchService is a mock implementation of search.Service
type MockSearchService struct {
	mock.Mock
}

// Search mocks the Search method of search.Service
func (m *MockSearchService) Search(ctx context.Context, params models.SearchParameters) models.SearchResult {
	return result(m.Called(ctx, params))
}

// Shopping mocks the Shopping method of search.Service
func (m *MockSearchService) Shopping(ctx context.Context, opts query.Options) models.SearchResult {
	return result(m.Called(ctx, opts))
}

// SearchView mocks the SearchView method of search.Service
func (m *MockSearchService) SearchView(ctx context.Context, opts query.Options) models.SearchResult {
	return result(m.Called(ctx, opts))
}

// ProductOffers mocks the ProductOffers method of search.Service
func (m *MockSearchService) ProductOffers(ctx context.Context, productID, location string) models.SearchResult {
	return result(m.Called(ctx, productID, location))
}

func result(args mock.Arguments) models.SearchResult {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(models.SearchResult)
}
