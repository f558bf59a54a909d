package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// json is the codec used for every request and response body. Object
// keys must match the field tags exactly.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// MaxCreateBookBodySize bounds the size of a book creation payload.
const MaxCreateBookBodySize = 1 << 20

var (
	ErrInvalidParams     = errors.New("invalid params")
	ErrBookAlreadyExists = errors.New("book already exists")
)

type (
	ContextKey        string
	missingFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	RequestIDHeader         string     = "X-Request-ID"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (m missingFieldError) Unwrap() error {
	return ErrInvalidParams
}

// titleConflictError reports a book creation rejected because
// another stored book already carries the same title.
type titleConflictError struct {
	title string
}

func (e *titleConflictError) Error() string {
	return fmt.Sprintf("book with title %q already exists", e.title)
}

func (e *titleConflictError) Unwrap() error {
	return ErrBookAlreadyExists
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// DecodeCreateBookRequestBody is a helper function to read the content of a book creation request.
func DecodeCreateBookRequestBody(r *http.Request, req *CreateBookRequest) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("empty create book request body: %w", ErrInvalidParams)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxCreateBookBodySize))
	if err != nil {
		return fmt.Errorf("failed to read create book request body: %v: %w", err, ErrInvalidParams)
	}
	// Unmarshal fails on any bytes left after the object.
	if err = json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("malformed create book request body: %v: %w", err, ErrInvalidParams)
	}
	return nil
}

// ValidateCreateBookRequest is a helper function to check if the content of a book creation request is valid.
// Only the presence of each field is checked.
func ValidateCreateBookRequest(req *CreateBookRequest) error {
	if req.Title == nil {
		return missingFieldError("title")
	}

	if req.Author == nil {
		return missingFieldError("author")
	}

	if req.Pages == nil {
		return missingFieldError("pages")
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	if net.ParseIP(ip) != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	for _, ip := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
