package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewTimeoutHandler ensures a slow request gets a json 503 and the
// handler side records the same status.
func TestNewTimeoutHandler(t *testing.T) {
	recorded := make(chan int, 1)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		cw := NewCustomResponseWriter(httptest.NewRecorder())
		err := WriteResponse(r.Context(), cw, http.StatusOK, HealthResponse{Status: "UP"})
		assert.Error(t, err)
		recorded <- cw.Status()
	})

	w := httptest.NewRecorder()
	NewTimeoutHandler(slow, 10*time.Millisecond).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Request timed out","code":"503"}`, w.Body.String())

	select {
	case status := <-recorded:
		assert.Equal(t, http.StatusServiceUnavailable, status)
	case <-time.After(time.Second):
		require.Fail(t, "slow handler did not finish")
	}
}

// TestNewTimeoutHandler_InTime ensures responses produced in time pass unchanged.
func TestNewTimeoutHandler_InTime(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("busy"))
	})

	w := httptest.NewRecorder()
	NewTimeoutHandler(fast, time.Second).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "busy", w.Body.String())
}
