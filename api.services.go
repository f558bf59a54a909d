package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Create(ctx context.Context, req CreateBookRequest) (Book, error)
	Count(ctx context.Context) (int, error)
}

// BookService runs the book creation workflow on top of the storage.
// The queue is optional and only receives books once they are stored.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	ids     UIDHandler
	storage BookStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, storage BookStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		ids:     ids,
		storage: storage,
		queue:   queue,
	}
}

// Create validates the request then checks the title and appends the new
// book within a single exclusive access to the storage, so two concurrent
// requests with the same title cannot both succeed.
func (bs *BookService) Create(ctx context.Context, req CreateBookRequest) (Book, error) {
	if err := ValidateCreateBookRequest(&req); err != nil {
		return Book{}, err
	}

	id, err := bs.ids.NewBookID()
	if err != nil {
		return Book{}, fmt.Errorf("service: failed to generate book id: %w", err)
	}

	var book Book
	err = bs.storage.Update(ctx, func(tx *BookTx) error {
		if existing, found := tx.FindByTitle(*req.Title); found {
			return &titleConflictError{title: existing.Title}
		}
		now := bs.clock.Now()
		book = Book{
			ID:        id,
			Title:     *req.Title,
			Author:    *req.Author,
			Pages:     *req.Pages,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Append(book)
	})
	if err != nil {
		return Book{}, err
	}

	bs.publish(ctx, book)
	return book, nil
}

// Count returns the number of stored books.
func (bs *BookService) Count(ctx context.Context) (int, error) {
	return bs.storage.Count(ctx)
}

func (bs *BookService) publish(ctx context.Context, book Book) {
	if bs.queue == nil {
		return
	}
	qid := bs.config.Events.Queue
	if err := bs.queue.Push(ctx, qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue",
			zap.String("request.id", GetValueFromContext(ctx, RequestIDContextKey)),
			zap.String("qid", qid),
			zap.String("book.id", book.ID),
			zap.Error(err),
		)
	}
}
