package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `2023-07-02T00:00:00Z` in RFC3339 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Err       error
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// NewBookID returns the configured id or error.
func (muid *MockUIDHandler) NewBookID() (string, error) {
	if muid.Err != nil {
		return "", muid.Err
	}
	return muid.MockedUID, nil
}

// MockQueuer records every pushed book.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	mu       sync.Mutex
	pushed   []Book
}

// Push mocks the behavior of enqueuing a book.
func (mq *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	mq.mu.Lock()
	mq.pushed = append(mq.pushed, book)
	mq.mu.Unlock()
	if mq.PushFunc == nil {
		return nil
	}
	return mq.PushFunc(ctx, qid, book)
}

// Pop is not used by the service.
func (mq *MockQueuer) Pop(_ context.Context, _ time.Duration, _ ...string) (string, Book, error) {
	return "", Book{}, nil
}

// Pushed returns a copy of the books pushed so far.
func (mq *MockQueuer) Pushed() []Book {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	return append([]Book(nil), mq.pushed...)
}

// MockBookStorage lets tests force storage failures.
type MockBookStorage struct {
	UpdateFunc func(ctx context.Context, fn func(tx *BookTx) error) error
	ViewFunc   func(ctx context.Context, fn func(tx *BookTx) error) error
	CountFunc  func(ctx context.Context) (int, error)
}

// Update mocks the behavior of a writable access to the storage.
func (m *MockBookStorage) Update(ctx context.Context, fn func(tx *BookTx) error) error {
	return m.UpdateFunc(ctx, fn)
}

// View mocks the behavior of a read-only access to the storage.
func (m *MockBookStorage) View(ctx context.Context, fn func(tx *BookTx) error) error {
	return m.ViewFunc(ctx, fn)
}

// Count mocks the behavior of counting stored books.
func (m *MockBookStorage) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

// newTestAPI wires an api handler over a fresh in-memory storage.
func newTestAPI(config *Config, ids UIDHandler, queue Queuer) (*APIHandler, *MemoryBookStorage) {
	if config == nil {
		config = NewDefaultConfig()
	}
	storage := NewMemoryBookStorage(zap.NewNop())
	bs := NewBookService(zap.NewNop(), config, NewMockClocker(), ids, storage, queue)
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), ids, bs)
	return api, storage
}
