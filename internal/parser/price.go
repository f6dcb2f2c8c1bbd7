package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"shopsearch/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyMarker identifies the extension that carries a price
const CurrencyMarker = "₽"

// PriceParser implements the Service interface
type PriceParser struct {
	// printer groups thousands with commas, later swapped for spaces
	printer *message.Printer
}

// NewParser creates a new price parser
func NewParser() Service {
	return newParser()
}

// newParser creates the concrete implementation
func newParser() *PriceParser {
	return &PriceParser{
		printer: message.NewPrinter(language.English),
	}
}

// ExtractPrice returns the price encoded in the first extension containing the currency marker.
// A malformed number yields ok=false; later extensions are not consulted.
func (p *PriceParser) ExtractPrice(extensions []string) (float64, bool) {
	for _, ext := range extensions {
		if !strings.Contains(ext, CurrencyMarker) {
			continue
		}
		return parsePrice(ext)
	}
	return 0, false
}

// parsePrice strips the marker and whitespace and parses "1 234,56" style numbers
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, CurrencyMarker, "")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return math.Round(value*100) / 100, true
}

// FormatPrice renders a price as "1 234.56 ₽"
func (p *PriceParser) FormatPrice(price float64) string {
	grouped := p.printer.Sprintf("%.2f", price)
	return strings.ReplaceAll(grouped, ",", " ") + " " + CurrencyMarker
}

// Annotate attaches price and formatted_price to every organic item with a parseable price.
// Items are modified in place and none are removed. Returns the number of priced items.
func (p *PriceParser) Annotate(result models.SearchResult) int {
	priced := 0
	for _, raw := range result.OrganicResults() {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		extensions := itemExtensions(item)
		if len(extensions) == 0 {
			continue
		}

		price, ok := p.ExtractPrice(extensions)
		if !ok {
			continue
		}

		item[models.KeyPrice] = price
		item[models.KeyFormattedPrice] = p.FormatPrice(price)
		priced++
	}
	return priced
}

// FilterPriced returns a shallow copy of result whose organic_results keeps only priced items.
// Order is preserved and the input is not modified.
func (p *PriceParser) FilterPriced(result models.SearchResult) models.SearchResult {
	filtered := make(models.SearchResult, len(result))
	for k, v := range result {
		filtered[k] = v
	}

	items := result.OrganicResults()
	if items == nil {
		return filtered
	}

	kept := make([]interface{}, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if _, hasPrice := item[models.KeyPrice]; hasPrice {
			kept = append(kept, item)
		}
	}
	filtered[models.KeyOrganicResults] = kept

	return filtered
}

// itemExtensions reads rich_snippet.extensions as strings
func itemExtensions(item map[string]interface{}) []string {
	snippet, ok := item[models.KeyRichSnippet].(map[string]interface{})
	if !ok {
		return nil
	}

	switch exts := snippet[models.KeyExtensions].(type) {
	case []string:
		return exts
	case []interface{}:
		out := make([]string, 0, len(exts))
		for _, e := range exts {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
