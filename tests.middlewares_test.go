package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 6, len(*pub))
	assert.Equal(t, 3, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	var number uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		number = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(1), number)
	assert.Equal(t, uint64(1), api.stats.called)
}

// TestRequestIDMiddleware ensures the request id is set into the context and the response headers.
func TestRequestIDMiddleware(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	var requestID string
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(req.Context(), RequestIDContextKey)
	}
	api.RequestIDMiddleware(handler)(w, req, nil)
	assert.Equal(t, "r:abc", requestID)
	assert.Equal(t, "r:abc", w.Header().Get(RequestIDHeader))
}

// TestStatsMiddleware ensures each response status code is recorded.
func TestStatsMiddleware(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	teapot := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}
	silent := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {}

	api.StatsMiddleware(teapot)(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	api.StatsMiddleware(teapot)(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	api.StatsMiddleware(silent)(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)

	assert.Equal(t, uint64(2), api.stats.status[http.StatusTeapot])
	assert.Equal(t, uint64(1), api.stats.status[http.StatusOK])
}

// TestStatsMiddleware_Panic ensures a panicking request is still counted
// so the called counter keeps matching the status stats.
func TestStatsMiddleware_Panic(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	stack := &Middlewares{api.PanicRecoveryMiddleware, api.RequestsCounterMiddleware, api.StatsMiddleware}
	handler := stack.Chain(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/api/books", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	api.stats.mu.RLock()
	defer api.stats.mu.RUnlock()
	assert.Equal(t, uint64(1), api.stats.called)
	assert.Equal(t, map[int]uint64{http.StatusInternalServerError: 1}, api.stats.status)
}

// TestPanicRecoveryMiddleware ensures a panicking handler ends with a generic 500 response.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api, _ := newTestAPI(nil, NewMockUIDHandler("abc"), nil)
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	}
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		api.PanicRecoveryMiddleware(handler)(w, httptest.NewRequest("POST", "/api/books", nil), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Internal server error","code":"500"}`, w.Body.String())
}

// TestCORSMiddleware ensures cors headers are applied.
func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	var called bool
	CORSMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
	})(w, httptest.NewRequest("GET", "/api/", nil), nil)
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
}
