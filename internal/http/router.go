package http

import (
	"context"
	"net/http"
	"time"

	"shopsearch/internal/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server with all dependencies
type Server struct {
	handler *Handler
	logger  logger.Service
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	addr string,
	handler *Handler,
	logger logger.Service,
	readTimeout, writeTimeout time.Duration,
) *Server {
	router := mux.NewRouter()

	srv := &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	// order matters: logging -> metrics -> cors -> recovery
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(recoveryMiddleware(logger, handler.InternalError))

	// mux skips middlewares for unmatched requests
	router.NotFoundHandler = loggingMiddleware(logger)(metricsMiddleware()(http.HandlerFunc(handler.NotFound)))

	srv.registerRoutes(router)

	return srv
}

// registerRoutes sets up the pages and API routes
func (s *Server) registerRoutes(router *mux.Router) {
	get := []string{http.MethodGet, http.MethodOptions}

	router.HandleFunc("/health", s.handler.HealthCheck).Methods(get...)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/api/search", s.handler.APISearch).Methods(get...)

	router.HandleFunc("/", s.handler.Index).Methods(get...)
	router.HandleFunc("/search", s.handler.SearchResults).Methods(get...)
	router.HandleFunc("/product/{product_id}", s.handler.Product).Methods(get...)
}

// Handler exposes the routed handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
