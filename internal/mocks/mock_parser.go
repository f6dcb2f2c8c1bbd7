package mocks

import (
	"shopsearch/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockParser is a mock implementation of parser.Service
type MockParser struct {
	mock.Mock
}

// ExtractPrice mocks the ExtractPrice method of parser.Service
func (m *MockParser) ExtractPrice(extensions []string) (float64, bool) {
	args := m.Called(extensions)
	return args.Get(0).(float64), args.Bool(1)
}

// FormatPrice mocks the FormatPrice method of parser.Service
func (m *MockParser) FormatPrice(price float64) string {
	args := m.Called(price)
	return args.String(0)
}

// Annotate mocks the Annotate method of parser.Service
func (m *MockParser) Annotate(result models.SearchResult) int {
	args := m.Called(result)
	return args.Int(0)
}

// FilterPriced mocks the FilterPriced method of parser.Service
func (m *MockParser) FilterPriced(result models.SearchResult) models.SearchResult {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(models.SearchResult)
}
