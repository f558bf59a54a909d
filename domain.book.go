package main

import (
	"context"
	"time"
)

// Book represents a book entity.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateBookRequest is the payload of a book creation request.
// A nil field means the caller omitted it or sent null.
type CreateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Pages  *int    `json:"pages"`
}

// BookStorage is the exclusive custodian of the books collection. Callers
// only reach the data through a scoped handle which is valid for the
// duration of the callback.
type BookStorage interface {
	Update(ctx context.Context, fn func(tx *BookTx) error) error
	View(ctx context.Context, fn func(tx *BookTx) error) error
	Count(ctx context.Context) (int, error)
}
