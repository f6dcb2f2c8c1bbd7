package models

import (
	"strconv"
	"strings"
	"time"
)

// SearchParameters is the canonical parameter set sent to the search API
type SearchParameters struct {
	Engine      string `json:"engine"`
	Query       string `json:"q,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	Location    string `json:"location"`
	Language    string `json:"hl"`
	Country     string `json:"gl"`
	TimePeriod  string `json:"time_period,omitempty"`
	ResultCount int    `json:"num"`
}

// CacheKey returns a fixed-order encoding of every field.
// Two parameter sets produce the same key exactly when all fields are equal.
func (p SearchParameters) CacheKey() string {
	// values are quoted so a separator inside one can't collide with the next field
	fields := []string{
		"engine=" + strconv.Quote(p.Engine),
		"q=" + strconv.Quote(p.Query),
		"product_id=" + strconv.Quote(p.ProductID),
		"location=" + strconv.Quote(p.Location),
		"hl=" + strconv.Quote(p.Language),
		"gl=" + strconv.Quote(p.Country),
		"time_period=" + strconv.Quote(p.TimePeriod),
		"num=" + strconv.Itoa(p.ResultCount),
	}
	return strings.Join(fields, "&")
}

// SearchResult is the decoded JSON object returned by the search API.
// Only the top-level keys organic_results and error are inspected.
type SearchResult map[string]interface{}

const (
	KeyOrganicResults = "organic_results"
	KeyError          = "error"
	KeyRichSnippet    = "rich_snippet"
	KeyExtensions     = "extensions"
	KeyPrice          = "price"
	KeyFormattedPrice = "formatted_price"
)

// ErrorResult builds the {error: message} shape returned for recoverable failures
func ErrorResult(message string) SearchResult {
	return SearchResult{KeyError: message}
}

// Error reports the error message carried by the result, if any
func (r SearchResult) Error() (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r[KeyError]
	if !ok {
		return "", false
	}
	msg, isString := v.(string)
	if !isString {
		return "unknown error", true
	}
	return msg, true
}

// OrganicResults returns the organic_results sequence or nil
func (r SearchResult) OrganicResults() []interface{} {
	if r == nil {
		return nil
	}
	items, _ := r[KeyOrganicResults].([]interface{})
	return items
}

// Cacheable is the admission predicate shared by cache writes and reads
func Cacheable(r SearchResult) bool {
	return len(r) > 0 && len(r.OrganicResults()) > 0
}

// ExampleSearch is a sample query shown on every page
type ExampleSearch struct {
	Query string `json:"query"`
	URL   string `json:"url"`
}

// ExampleSearches are the sample queries linked from the search form
var ExampleSearches = []ExampleSearch{
	{
		Query: `Телевизор LG 65" 65UR81006LJ.ARUB`,
		URL:   "https://www.searchapi.io/api/v1/searches/search_6d97LXP4moruanBXWk03EOrl",
	},
	{
		Query: "САНОКС УЛЬТРА БЕЛЫЙ чистящее средство д/сантехники 750мл",
		URL:   "https://www.searchapi.io/api/v1/searches/search_ZW75dANvqloT2aRax4blrDJ3",
	},
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
