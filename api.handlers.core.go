package main

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger      *zap.Logger
	config      *Config
	stats       *Statistics
	clock       Clocker
	idsHandler  UIDHandler
	bookService BookServiceProvider
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, bs BookServiceProvider) *APIHandler {
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &APIHandler{
		logger:      logger,
		config:      config,
		stats:       stats,
		clock:       clock,
		idsHandler:  idsHandler,
		bookService: bs,
	}
}

// NotFound returns a handler which answers requests on unknown routes.
func (api *APIHandler) NotFound() http.Handler {
	return api.errorHandler(NewAPIError(http.StatusNotFound, MessageRouteNotFound))
}

// MethodNotAllowed returns a handler which answers requests on a known
// route but with an unsupported method.
func (api *APIHandler) MethodNotAllowed() http.Handler {
	return api.errorHandler(NewAPIError(http.StatusMethodNotAllowed, MessageMethodForbidden))
}

func (api *APIHandler) errorHandler(errResp *APIError) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		api.logger.Warn("request rejected",
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Int("response.status", errResp.Status),
		)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
	})
}
