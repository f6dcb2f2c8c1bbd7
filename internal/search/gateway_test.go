package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shopsearch/internal/cache"
	"shopsearch/internal/cache/searchCache"
	"shopsearch/internal/mocks"
	"shopsearch/internal/models"
	"shopsearch/internal/parser"
	"shopsearch/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func shoppingResult() models.SearchResult {
	return models.SearchResult{
		"organic_results": []interface{}{
			map[string]interface{}{
				"title":        "LG 65UR81006LJ",
				"rich_snippet": map[string]interface{}{"extensions": []interface{}{"54 990 ₽"}},
			},
			map[string]interface{}{
				"title": "LG 65UR81006LJ (no price)",
			},
		},
	}
}

var tvParams = query.Normalize(query.Options{Query: "телевизор LG"})

func TestNewService_MissingAPIKey(t *testing.T) {
	service, err := NewService(&mocks.MockFetcher{}, &mocks.MockSearchCache{}, &mocks.MockParser{}, mocks.NewPermissiveLogger(), "")

	assert.Nil(t, service)
	assert.ErrorIs(t, err, models.ErrAPIKeyMissing)
}

func TestGateway_Search_CacheHit(t *testing.T) {
	// Arrange
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}
	mockLogger := &mocks.MockLogger{}

	service, err := newGateway(mockFetcher, mockCache, mockParser, mockLogger, "key")
	require.NoError(t, err)

	ctx := context.Background()
	cached := shoppingResult()

	mockCache.On("Get", ctx, tvParams).Return(cached, nil)
	mockLogger.On("LogSuccess", ctx, "cache_hit", "телевизор LG", "Retrieved search result from cache", mock.Anything).Return()

	// Act
	result := service.Search(ctx, tvParams)

	// Assert
	assert.Equal(t, cached, result)
	mockCache.AssertExpectations(t)
	mockLogger.AssertExpectations(t)
	mockFetcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	mockParser.AssertNotCalled(t, "Annotate", mock.Anything)
}

func TestGateway_Search_CacheMissStoresResult(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}
	mockLogger := &mocks.MockLogger{}

	service, err := newGateway(mockFetcher, mockCache, mockParser, mockLogger, "key")
	require.NoError(t, err)

	ctx := context.Background()
	fetched := shoppingResult()

	mockCache.On("Get", ctx, tvParams).Return(nil, models.ErrCacheUnavailable)
	mockLogger.On("LogInfo", ctx, "cache_miss", "Cache miss for search", mock.Anything).Return()

	mockFetcher.On("Search", mock.Anything, tvParams).Return(fetched, nil)
	mockParser.On("Annotate", fetched).Return(1)
	mockLogger.On("LogSuccess", mock.Anything, "fetch_results", "телевизор LG", "Fetched search results", mock.Anything).Return()

	mockCache.On("Set", mock.Anything, tvParams, fetched).Return(nil)

	result := service.Search(ctx, tvParams)

	assert.Equal(t, fetched, result)
	mockCache.AssertExpectations(t)
	mockFetcher.AssertExpectations(t)
	mockParser.AssertExpectations(t)
	mockLogger.AssertExpectations(t)
}

func TestGateway_Search_FetchErrorBecomesErrorResult(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}
	mockLogger := mocks.NewPermissiveLogger()

	service, err := newGateway(mockFetcher, mockCache, mockParser, mockLogger, "key")
	require.NoError(t, err)

	ctx := context.Background()
	fetchErr := errors.New("connection refused")

	mockCache.On("Get", ctx, tvParams).Return(nil, models.ErrCacheUnavailable)
	mockFetcher.On("Search", mock.Anything, tvParams).Return(nil, fetchErr)

	result := service.Search(ctx, tvParams)

	msg, failed := result.Error()
	require.True(t, failed)
	assert.Equal(t, "Search API request failed: connection refused", msg)
	assert.Len(t, result, 1)

	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	mockParser.AssertNotCalled(t, "Annotate", mock.Anything)
	mockLogger.AssertCalled(t, "LogError", mock.Anything, "fetch_results", "телевизор LG", "Search API request failed", mock.MatchedBy(func(err error) bool {
		var searchErr *models.SearchError
		return errors.As(err, &searchErr) && searchErr.Engine == "google_shopping" && errors.Is(err, fetchErr)
	}), models.LogSeverityMedium, mock.Anything)
}

func TestGateway_Search_EmptyResultNotStored(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}

	service, err := newGateway(mockFetcher, mockCache, mockParser, mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)

	ctx := context.Background()
	empty := models.SearchResult{"organic_results": []interface{}{}, "search_metadata": map[string]interface{}{"id": "x"}}

	mockCache.On("Get", ctx, tvParams).Return(nil, models.ErrCacheUnavailable)
	mockFetcher.On("Search", mock.Anything, tvParams).Return(empty, nil)
	mockParser.On("Annotate", empty).Return(0)

	result := service.Search(ctx, tvParams)

	assert.Equal(t, empty, result)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestGateway_Search_CacheFailuresAreNotFatal(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}
	mockLogger := mocks.NewPermissiveLogger()

	service, err := newGateway(mockFetcher, mockCache, mockParser, mockLogger, "key")
	require.NoError(t, err)

	ctx := context.Background()
	fetched := shoppingResult()
	backendErr := errors.New("redis: connection refused")

	mockCache.On("Get", ctx, tvParams).Return(nil, backendErr)
	mockFetcher.On("Search", mock.Anything, tvParams).Return(fetched, nil)
	mockParser.On("Annotate", fetched).Return(1)
	mockCache.On("Set", mock.Anything, tvParams, fetched).Return(backendErr)

	result := service.Search(ctx, tvParams)

	assert.Equal(t, fetched, result)
	mockLogger.AssertCalled(t, "LogError", ctx, "cache_miss", "телевизор LG", mock.Anything, backendErr, models.LogSeverityLow, mock.Anything)
	mockLogger.AssertCalled(t, "LogError", mock.Anything, "cache_set", "телевизор LG", mock.Anything, backendErr, models.LogSeverityLow, mock.Anything)
}

func TestGateway_Views_EmptyInput(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}

	service, err := newGateway(mockFetcher, mockCache, &mocks.MockParser{}, mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)

	ctx := context.Background()

	assert.Equal(t, models.SearchResult{}, service.Shopping(ctx, query.Options{}))
	assert.Equal(t, models.SearchResult{}, service.SearchView(ctx, query.Options{Location: "Kazan"}))
	assert.Equal(t, models.SearchResult{}, service.ProductOffers(ctx, "", "Moscow"))

	mockCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	mockFetcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGateway_SearchView_Parameters(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}

	service, err := newGateway(mockFetcher, mockCache, mockParser, mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)

	ctx := context.Background()
	expected := models.SearchParameters{
		Engine:      "google",
		Query:       "утюг купить",
		Location:    "Moscow",
		Language:    "ru",
		Country:     "ru",
		ResultCount: 50,
	}
	cached := shoppingResult()
	filtered := models.SearchResult{"organic_results": cached.OrganicResults()[:1]}

	mockCache.On("Get", ctx, expected).Return(cached, nil)
	mockParser.On("FilterPriced", cached).Return(filtered)

	result := service.SearchView(ctx, query.Options{Query: "утюг"})

	assert.Equal(t, filtered, result)
	mockCache.AssertExpectations(t)
	mockParser.AssertExpectations(t)
}

func TestGateway_SearchView_ErrorPassesThrough(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}
	mockParser := &mocks.MockParser{}

	service, err := newGateway(mockFetcher, mockCache, mockParser, mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)

	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, models.ErrCacheUnavailable)
	mockFetcher.On("Search", mock.Anything, mock.Anything).Return(nil, models.ErrFetchTimeout)

	result := service.SearchView(context.Background(), query.Options{Query: "утюг"})

	_, failed := result.Error()
	assert.True(t, failed)
	mockParser.AssertNotCalled(t, "FilterPriced", mock.Anything)
}

func TestGateway_ProductOffers_Parameters(t *testing.T) {
	mockFetcher := &mocks.MockFetcher{}
	mockCache := &mocks.MockSearchCache{}

	service, err := newGateway(mockFetcher, mockCache, &mocks.MockParser{}, mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)

	ctx := context.Background()
	expected := models.SearchParameters{
		Engine:      "google_product_offers",
		ProductID:   "4887235756540435899",
		Location:    "Saint Petersburg",
		Language:    "ru",
		Country:     "ru",
		ResultCount: 50,
	}
	offers := models.SearchResult{"organic_results": []interface{}{map[string]interface{}{"merchant": "DNS"}}}

	mockCache.On("Get", ctx, expected).Return(offers, nil)

	result := service.ProductOffers(ctx, "4887235756540435899", "Saint Petersburg")

	assert.Equal(t, offers, result)
	mockCache.AssertExpectations(t)
}

// countingFetcher serves canned results and counts remote calls
type countingFetcher struct {
	calls   atomic.Int32
	delay   time.Duration
	respond func(params models.SearchParameters) (models.SearchResult, error)
}

func (f *countingFetcher) Search(ctx context.Context, params models.SearchParameters) (models.SearchResult, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.respond(params)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRealGateway(t *testing.T, fetcher *countingFetcher, ttl time.Duration) (*Gateway, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	memory, err := cache.NewMemoryCacheWithClock(10, clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = memory.Close() })

	gateway, err := newGateway(fetcher, searchCache.New(memory, ttl), parser.NewParser(), mocks.NewPermissiveLogger(), "key")
	require.NoError(t, err)
	return gateway, clock
}

func TestGateway_RepeatedSearchCallsRemoteOnce(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return shoppingResult(), nil
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)
	ctx := context.Background()

	first := gateway.Search(ctx, tvParams)
	second := gateway.Search(ctx, tvParams)

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, first, second)

	// the parser annotated the priced item before it was stored
	item := second.OrganicResults()[0].(map[string]interface{})
	assert.Equal(t, 54990.0, item["price"])
	assert.Equal(t, "54 990.00 ₽", item["formatted_price"])
}

func TestGateway_CallerMutationDoesNotLeakIntoCache(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return shoppingResult(), nil
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)
	ctx := context.Background()

	first := gateway.Search(ctx, tvParams)
	first["organic_results"] = []interface{}{}

	second := gateway.Search(ctx, tvParams)
	assert.Len(t, second.OrganicResults(), 2)
}

func TestGateway_ErrorsAreNeverCached(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return nil, models.ErrFetchTimeout
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, failed := gateway.Search(ctx, tvParams).Error()
		assert.True(t, failed)
	}
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestGateway_EntriesExpire(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return shoppingResult(), nil
	}}
	gateway, clock := newRealGateway(t, fetcher, time.Minute)
	ctx := context.Background()

	gateway.Search(ctx, tvParams)
	clock.Advance(59 * time.Second)
	gateway.Search(ctx, tvParams)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	clock.Advance(time.Second)
	gateway.Search(ctx, tvParams)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestGateway_DistinctParametersAreDistinctEntries(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return shoppingResult(), nil
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)
	ctx := context.Background()

	gateway.Search(ctx, tvParams)
	gateway.Search(ctx, query.Normalize(query.Options{Query: "телевизор LG", Location: "Kazan"}))
	gateway.Search(ctx, query.Normalize(query.Options{Query: "телевизор LG", ResultCount: 10}))

	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestGateway_ConcurrentMissesShareOneCall(t *testing.T) {
	fetcher := &countingFetcher{
		delay: 100 * time.Millisecond,
		respond: func(models.SearchParameters) (models.SearchResult, error) {
			return shoppingResult(), nil
		},
	}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)

	var wg sync.WaitGroup
	results := make([]models.SearchResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = gateway.Search(context.Background(), tvParams)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for _, r := range results {
		assert.Len(t, r.OrganicResults(), 2)
	}
}

func TestGateway_CanceledCallerStillPopulatesCache(t *testing.T) {
	fetcher := &countingFetcher{respond: func(models.SearchParameters) (models.SearchResult, error) {
		return shoppingResult(), nil
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gateway.Search(ctx, tvParams)
	gateway.Search(context.Background(), tvParams)

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestGateway_SearchViewDoesNotFilterCachedValue(t *testing.T) {
	fetcher := &countingFetcher{respond: func(params models.SearchParameters) (models.SearchResult, error) {
		assert.Equal(t, "google", params.Engine)
		assert.Equal(t, "телевизор LG купить", params.Query)
		return shoppingResult(), nil
	}}
	gateway, _ := newRealGateway(t, fetcher, time.Hour)
	ctx := context.Background()

	view := gateway.SearchView(ctx, query.Options{Query: "телевизор LG"})
	require.Len(t, view.OrganicResults(), 1)

	full := gateway.Search(ctx, query.Normalize(query.Options{Query: "телевизор LG купить", Engine: "google"}))
	assert.Len(t, full.OrganicResults(), 2)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}
