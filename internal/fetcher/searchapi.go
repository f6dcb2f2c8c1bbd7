package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"shopsearch/internal/metrics"
	"shopsearch/internal/models"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is the searchapi.io search URL
const DefaultEndpoint = "https://www.searchapi.io/api/v1/search"

const maxBodySize = 5 * 1024 * 1024

// SearchAPIFetcher implements Service against searchapi.io
type SearchAPIFetcher struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

// NewSearchAPIFetcher creates a fetcher issuing one GET per call, bounded by timeout
func NewSearchAPIFetcher(endpoint, apiKey string, timeout time.Duration) Service {
	return newSearchAPIFetcher(endpoint, apiKey, timeout)
}

// newSearchAPIFetcher creates the concrete implementation
func newSearchAPIFetcher(endpoint, apiKey string, timeout time.Duration) *SearchAPIFetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := resty.New().
		SetHeader("User-Agent", "shopsearch/1.0").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)

	return &SearchAPIFetcher{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Search performs a single remote call and decodes the JSON object it returns
func (f *SearchAPIFetcher) Search(ctx context.Context, params models.SearchParameters) (models.SearchResult, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(f.queryParams(params)).
		Get(f.endpoint)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if isTimeout(err) {
			metrics.RecordUpstream(params.Engine, "timeout", elapsed)
			return nil, fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		metrics.RecordUpstream(params.Engine, "error", elapsed)
		return nil, fmt.Errorf("failed to call search API: %w", err)
	}

	status := resp.StatusCode()
	metrics.RecordUpstream(params.Engine, strconv.Itoa(status), elapsed)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d %s", models.ErrUpstreamStatus, status, http.StatusText(status))
	}

	body := resp.Body()
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", models.ErrInvalidResponse, maxBodySize)
	}

	var result models.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidResponse, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty body", models.ErrInvalidResponse)
	}

	return result, nil
}

// queryParams maps SearchParameters onto the API's query string. Empty optional fields are left out.
func (f *SearchAPIFetcher) queryParams(params models.SearchParameters) map[string]string {
	q := map[string]string{
		"engine":   params.Engine,
		"gl":       params.Country,
		"hl":       params.Language,
		"location": params.Location,
		"api_key":  f.apiKey,
	}

	optional := map[string]string{
		"q":           params.Query,
		"product_id":  params.ProductID,
		"time_period": params.TimePeriod,
	}
	for k, v := range optional {
		if v != "" {
			q[k] = v
		}
	}

	if params.ResultCount > 0 {
		q["num"] = strconv.Itoa(params.ResultCount)
	}

	return q
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
