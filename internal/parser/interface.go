package parser

import "shopsearch/internal/models"

// Service defines the interface for shaping search API results
// External packages should use this interface, not the concrete implementations
type Service interface {
	ExtractPrice(extensions []string) (float64, bool)
	FormatPrice(price float64) string
	Annotate(result models.SearchResult) int
	FilterPriced(result models.SearchResult) models.SearchResult
}
