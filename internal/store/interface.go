// Package store defines the persistence interface for the guestbook server.
//
// Backends live in subpackages: badgerdb (default), sqlite and postgres.
// All of them pass the suite in storetest.
package store

import (
	"context"

	"github.com/listenupapp/guestbook/internal/domain"
)

// Unlimited asks a list operation for every matching record.
// Any limit <= 0 has the same meaning.
const Unlimited = 0

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, limit int) ([]*domain.Book, error)

	// Greetings
	CreateGreeting(ctx context.Context, greeting *domain.Greeting) error
	ListGreetings(ctx context.Context, bookID int64, limit int) ([]*domain.Greeting, error)
}
