package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shopsearch/internal/logger"
	"shopsearch/internal/models"
	"shopsearch/internal/query"
	"shopsearch/internal/search"

	"github.com/gorilla/mux"
)

// Handler contains the HTTP handlers for the web pages and the JSON API
type Handler struct {
	searchService search.Service
	logger        logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	searchService search.Service,
	logger logger.Service,
) *Handler {
	return &Handler{
		searchService: searchService,
		logger:        logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// writePage renders an HTML page. A template failure falls back to a bare 500.
func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, statusCode int, name string, data pageData) {
	logEvent := logger.GetLogEvent(r.Context())
	data.RequestID = logEvent.ProcessID
	data.Searches = models.ExampleSearches

	body, err := renderTemplate(name, data)
	if err != nil {
		h.logger.LogError(r.Context(), logger.OpRenderPage, name, "Failed to render page", err, models.LogSeverityHigh, nil)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// writeErrorPage renders the error page for a failed search
func (h *Handler) writeErrorPage(w http.ResponseWriter, r *http.Request, data pageData, message string) {
	data.Error = message
	data.Title = "Ошибка"
	h.writePage(w, r, http.StatusInternalServerError, pageError, data)
}

// Index handles GET /: the search form plus google_shopping results when q is given
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := query.FromValues(r.URL.Query())
	data := pageData{Query: opts.Query, Location: opts.Location, Title: opts.Query}

	result := h.searchService.Shopping(ctx, opts)
	if msg, failed := result.Error(); failed {
		h.logger.LogError(ctx, logger.OpSearch, opts.Query, "Search failed", errors.New(msg), models.LogSeverityMedium, nil)
		h.writeErrorPage(w, r, data, msg)
		return
	}

	data.Products = productViews(result)
	h.writePage(w, r, http.StatusOK, pageIndex, data)
}

// SearchResults handles GET /search: the priced results list
func (h *Handler) SearchResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := query.FromValues(r.URL.Query())
	data := pageData{Query: opts.Query, Location: opts.Location, Title: opts.Query, Action: "/search"}

	result := h.searchService.SearchView(ctx, opts)
	if msg, failed := result.Error(); failed {
		h.logger.LogError(ctx, logger.OpSearchView, opts.Query, "Search view failed", errors.New(msg), models.LogSeverityMedium, nil)
		h.writeErrorPage(w, r, data, msg)
		return
	}

	data.Products = productViews(result)
	h.writePage(w, r, http.StatusOK, pageSearch, data)
}

// Product handles GET /product/{product_id}
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["product_id"]
	location := r.URL.Query().Get("location")
	data := pageData{ProductID: productID, Location: location}

	result := h.searchService.ProductOffers(ctx, productID, location)
	if msg, failed := result.Error(); failed {
		h.logger.LogError(ctx, logger.OpProductOffers, productID, "Product offers lookup failed", errors.New(msg), models.LogSeverityMedium, nil)
		h.writeErrorPage(w, r, data, msg)
		return
	}

	data.ProductTitle = productTitle(result)
	data.Title = data.ProductTitle
	data.Offers = offerViews(result)
	h.writePage(w, r, http.StatusOK, pageProduct, data)
}

// APISearch handles GET /api/search and returns the gateway result as JSON
func (h *Handler) APISearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := query.FromValues(r.URL.Query())

	result := h.searchService.Shopping(ctx, opts)
	if msg, failed := result.Error(); failed {
		h.logger.LogError(ctx, logger.OpSearch, opts.Query, "API search failed", errors.New(msg), models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "search failed", msg)
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, result); err != nil {
		h.logger.LogError(ctx, logger.OpSearch, opts.Query, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpSearch, opts.Query, "Served API search", map[string]interface{}{
		"organic_count": len(result.OrganicResults()),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// NotFound renders the 404 page for unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusNotFound, pageNotFound, pageData{Title: "404"})
}

// InternalError renders the 500 page
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusInternalServerError, pageInternal, pageData{Title: "500"})
}
