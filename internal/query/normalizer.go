package query

import (
	"net/url"
	"strconv"
	"strings"

	"shopsearch/internal/models"
)

// Defaults applied to omitted fields
const (
	DefaultLocation    = "Moscow"
	DefaultLanguage    = "ru"
	DefaultCountry     = "ru"
	DefaultEngine      = "google_shopping"
	DefaultResultCount = 50
)

// Engines used by the web surface
const (
	EngineShopping      = DefaultEngine
	EngineGoogle        = "google"
	EngineProductOffers = "google_product_offers"
)

// Options holds caller-supplied fields. Zero values mean "not supplied".
type Options struct {
	Query       string
	ProductID   string
	Location    string
	Language    string
	Country     string
	Engine      string
	TimePeriod  string
	ResultCount int
}

// Normalize fills omitted fields with their defaults and leaves supplied ones untouched.
// Query and ProductID are never defaulted.
func Normalize(opts Options) models.SearchParameters {
	params := models.SearchParameters{
		Engine:      opts.Engine,
		Query:       opts.Query,
		ProductID:   opts.ProductID,
		Location:    opts.Location,
		Language:    opts.Language,
		Country:     opts.Country,
		TimePeriod:  opts.TimePeriod,
		ResultCount: opts.ResultCount,
	}

	if params.Engine == "" {
		params.Engine = DefaultEngine
	}
	if params.Location == "" {
		params.Location = DefaultLocation
	}
	if params.Language == "" {
		params.Language = DefaultLanguage
	}
	if params.Country == "" {
		params.Country = DefaultCountry
	}
	if params.ResultCount <= 0 {
		params.ResultCount = DefaultResultCount
	}

	return params
}

// FromValues reads Options from inbound query-string values.
// Locale fields use the search API names: hl for language, gl for country.
func FromValues(values url.Values) Options {
	opts := Options{
		Query:      strings.TrimSpace(values.Get("q")),
		ProductID:  strings.TrimSpace(values.Get("product_id")),
		Location:   strings.TrimSpace(values.Get("location")),
		Language:   strings.TrimSpace(values.Get("hl")),
		Country:    strings.TrimSpace(values.Get("gl")),
		Engine:     strings.TrimSpace(values.Get("engine")),
		TimePeriod: strings.TrimSpace(values.Get("time_period")),
	}

	if num, err := strconv.Atoi(values.Get("num")); err == nil && num > 0 {
		opts.ResultCount = num
	}

	return opts
}
