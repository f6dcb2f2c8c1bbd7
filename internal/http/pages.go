package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"shopsearch/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page names
const (
	pageIndex    = "index.html"
	pageSearch   = "search.html"
	pageProduct  = "product.html"
	pageError    = "error.html"
	pageNotFound = "404.html"
	pageInternal = "500.html"
)

// pageData is the single view model shared by every page
type pageData struct {
	Title     string
	Action    string
	Query     string
	Location  string
	Error     string
	RequestID string

	Products []productView

	ProductID    string
	ProductTitle string
	Offers       []offerView

	Searches []models.ExampleSearch
}

type productView struct {
	Title     string
	Link      string
	Source    string
	Thumbnail string
	Price     string
	ProductID string
}

type offerView struct {
	Merchant string
	Title    string
	Link     string
	Price    string
}

// renderTemplate executes name into a buffer so a failing template never sends a partial page
func renderTemplate(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// productViews turns result items into list rows. Shopping responses carry
// shopping_results instead of organic_results, so either is accepted.
func productViews(result models.SearchResult) []productView {
	items := result.OrganicResults()
	if len(items) == 0 {
		items, _ = result["shopping_results"].([]interface{})
	}

	views := make([]productView, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		views = append(views, productView{
			Title:     stringField(item, "title"),
			Link:      firstString(item, "link", "product_link"),
			Source:    firstString(item, "source", "seller", "displayed_link"),
			Thumbnail: stringField(item, "thumbnail"),
			Price:     priceLabel(item),
			ProductID: stringField(item, "product_id"),
		})
	}
	return views
}

func offerViews(result models.SearchResult) []offerView {
	items, _ := result["offers"].([]interface{})

	views := make([]offerView, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		merchant := stringField(item, "seller")
		if m, ok := item["merchant"].(map[string]interface{}); ok && merchant == "" {
			merchant = stringField(m, "name")
		}
		views = append(views, offerView{
			Merchant: merchant,
			Title:    stringField(item, "title"),
			Link:     firstString(item, "link", "offer_link"),
			Price:    priceLabel(item),
		})
	}
	return views
}

func productTitle(result models.SearchResult) string {
	if product, ok := result["product"].(map[string]interface{}); ok {
		return stringField(product, "title")
	}
	return ""
}

// priceLabel prefers the normalized price over whatever the upstream sent
func priceLabel(item map[string]interface{}) string {
	if formatted := stringField(item, models.KeyFormattedPrice); formatted != "" {
		return formatted
	}
	return stringField(item, models.KeyPrice)
}

func firstString(item map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v := stringField(item, k); v != "" {
			return v
		}
	}
	return ""
}

func stringField(item map[string]interface{}, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
