package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// IndexResponse is the data model sent when index endpoint is called.
type IndexResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the data model sent when health endpoint is called.
type HealthResponse struct {
	Status string `json:"status"`
}

// Index greets the users of the api.
//
// @Summary   Greeting
// @Tags      books
// @Produce   json
// @Success   200  {object}  IndexResponse
// @Router    / [get]
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := WriteResponse(r.Context(), w, http.StatusOK, IndexResponse{Message: "Books API with Go is running!!!"}); err != nil {
		api.logger.Error("failed to send index response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Health tells whether the api is able to serve requests.
//
// @Summary   Health check
// @Tags      books
// @Produce   json
// @Success   200  {object}  HealthResponse
// @Router    /health [get]
func (api *APIHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := WriteResponse(r.Context(), w, http.StatusOK, HealthResponse{Status: "UP"}); err != nil {
		api.logger.Error("failed to send health response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook stores a new book unless another one already has its title.
//
// @Summary   Create a book
// @Tags      books
// @Accept    json
// @Produce   json
// @Param     book  body      CreateBookRequest  true  "title, author and pages are all required"
// @Success   201   {object}  Book
// @Failure   400   {object}  APIError
// @Failure   422   {object}  APIError
// @Failure   500   {object}  APIError
// @Router    /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeCreateBookRequestBody(r, &req)
	if err != nil {
		api.logger.Warn("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(http.StatusBadRequest, MessageInvalidParams)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.bookService.Create(r.Context(), req)
	if err != nil {
		var errResp *APIError
		switch {
		case errors.Is(err, ErrInvalidParams):
			api.logger.Warn("failed to create book", zap.String("request.id", requestID), zap.Error(err))
			errResp = NewAPIError(http.StatusBadRequest, MessageInvalidParams)
		case errors.Is(err, ErrBookAlreadyExists):
			api.logger.Warn("book already exists", zap.String("request.id", requestID), zap.Error(err))
			errResp = NewAPIError(http.StatusUnprocessableEntity, MessageBookExists)
		default:
			api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
			errResp = NewAPIError(http.StatusInternalServerError, MessageInternalError)
		}
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
