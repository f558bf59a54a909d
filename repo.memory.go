package main

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrStorePoisoned = errors.New("book store is poisoned by a failed holder")
	ErrTxClosed      = errors.New("book store handle used after release")
	ErrReadOnlyTx    = errors.New("book store handle is read-only")
)

var _ BookStorage = (*MemoryBookStorage)(nil) // ensure MemoryBookStorage implements BookStorage.

// MemoryBookStorage keeps books in insertion order for the lifetime of the
// process. A single mutex serializes every access, readers included.
type MemoryBookStorage struct {
	logger   *zap.Logger
	mu       sync.Mutex
	books    []Book
	poisoned bool
}

// NewMemoryBookStorage provides an empty in-memory book storage.
func NewMemoryBookStorage(logger *zap.Logger) *MemoryBookStorage {
	return &MemoryBookStorage{
		logger: logger,
		books:  []Book{},
	}
}

// BookTx is the handle given to a caller holding exclusive access
// to the storage. A released handle yields nothing and accepts nothing.
type BookTx struct {
	books    *[]Book
	writable bool
	closed   bool
}

// Len returns the number of stored books.
func (tx *BookTx) Len() int {
	if tx.closed {
		return 0
	}
	return len(*tx.books)
}

// Each calls fn for every book in insertion order until fn returns false.
func (tx *BookTx) Each(fn func(book Book) bool) {
	if tx.closed {
		return
	}
	for _, book := range *tx.books {
		if !fn(book) {
			return
		}
	}
}

// FindByTitle scans the books for an exact title match.
func (tx *BookTx) FindByTitle(title string) (Book, bool) {
	var found Book
	var ok bool
	tx.Each(func(book Book) bool {
		if book.Title == title {
			found, ok = book, true
			return false
		}
		return true
	})
	return found, ok
}

// Append adds a book at the end of the collection.
func (tx *BookTx) Append(book Book) error {
	if tx.closed {
		return ErrTxClosed
	}
	if !tx.writable {
		return ErrReadOnlyTx
	}
	*tx.books = append(*tx.books, book)
	return nil
}

// Update runs fn with a writable handle while holding exclusive access.
// Books appended by fn are discarded when fn returns an error.
func (ms *MemoryBookStorage) Update(_ context.Context, fn func(tx *BookTx) error) error {
	return ms.acquire(true, fn)
}

// View runs fn with a read-only handle while holding exclusive access.
func (ms *MemoryBookStorage) View(_ context.Context, fn func(tx *BookTx) error) error {
	return ms.acquire(false, fn)
}

// Count returns the number of stored books.
func (ms *MemoryBookStorage) Count(ctx context.Context) (int, error) {
	var n int
	err := ms.View(ctx, func(tx *BookTx) error {
		n = tx.Len()
		return nil
	})
	return n, err
}

// acquire locks the storage for the duration of fn. The lock is released on
// every exit path. A panic inside fn marks the storage as poisoned before it
// keeps unwinding, so later callers fail instead of reading a suspect view.
func (ms *MemoryBookStorage) acquire(writable bool, fn func(tx *BookTx) error) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.poisoned {
		return ErrStorePoisoned
	}

	size := len(ms.books)
	tx := &BookTx{books: &ms.books, writable: writable}
	defer func() {
		tx.closed = true
		if r := recover(); r != nil {
			ms.poisoned = true
			ms.logger.Error("storage: holder panicked, store is now poisoned", zap.Any("panic", r))
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		ms.books = ms.books[:size]
		return err
	}
	return nil
}
