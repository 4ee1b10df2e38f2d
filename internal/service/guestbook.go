// Package service implements the guestbook operations on top of a store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/guestbook/internal/domain"
	domainerrors "github.com/listenupapp/guestbook/internal/errors"
	"github.com/listenupapp/guestbook/internal/metrics"
	"github.com/listenupapp/guestbook/internal/store"
)

// Clock returns the current time. Greetings are dated with it.
type Clock func() time.Time

// SearchIndexer keeps a search index in step with writes.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	IndexGreeting(ctx context.Context, book *domain.Book, greeting *domain.Greeting) error
}

// NoopSearchIndexer is used when search is disabled.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// IndexGreeting is a no-op.
func (NoopSearchIndexer) IndexGreeting(context.Context, *domain.Book, *domain.Greeting) error {
	return nil
}

// GuestbookService orchestrates book and greeting operations.
type GuestbookService struct {
	store   store.Store
	logger  *slog.Logger
	now     Clock
	indexer SearchIndexer
	metrics *metrics.Metrics
}

// Option configures a GuestbookService.
type Option func(*GuestbookService)

// WithClock replaces time.Now as the source of greeting dates.
func WithClock(now Clock) Option {
	return func(s *GuestbookService) { s.now = now }
}

// WithSearchIndexer indexes created books and greetings.
func WithSearchIndexer(indexer SearchIndexer) Option {
	return func(s *GuestbookService) { s.indexer = indexer }
}

// WithMetrics counts created books, greetings and store failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GuestbookService) { s.metrics = m }
}

// NewGuestbookService creates a new guestbook service.
func NewGuestbookService(store store.Store, logger *slog.Logger, opts ...Option) *GuestbookService {
	s := &GuestbookService{
		store:   store,
		logger:  logger,
		now:     time.Now,
		indexer: NoopSearchIndexer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListBooks returns up to limit books ordered by name.
// A limit <= 0 means domain.DefaultListLimit.
func (s *GuestbookService) ListBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}

	books, err := s.store.ListBooks(ctx, limit)
	if err != nil {
		s.metrics.StoreError("list_books")
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// CreateBook persists a book named name. The name is stored as given.
func (s *GuestbookService) CreateBook(ctx context.Context, name string) (*domain.Book, error) {
	book := domain.NewBook(name)
	if err := s.store.CreateBook(ctx, book); err != nil {
		s.metrics.StoreError("create_book")
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.metrics.BookCreated()
	s.logger.Info("book created", "book_id", book.ID)

	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
	return book, nil
}

// GetBook returns the book with the given ID.
// Returns an errors.ErrNotFound match when it does not exist.
func (s *GuestbookService) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %d not found", bookID).WithCause(err)
	}
	if err != nil {
		s.metrics.StoreError("get_book")
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListGreetings returns a book's most recent greetings, newest first.
// A limit outside 1..domain.MaxGreetings means domain.MaxGreetings.
// The book is not checked for existence.
func (s *GuestbookService) ListGreetings(ctx context.Context, bookID int64, limit int) ([]*domain.Greeting, error) {
	if limit <= 0 || limit > domain.MaxGreetings {
		limit = domain.MaxGreetings
	}

	greetings, err := s.store.ListGreetings(ctx, bookID, limit)
	if err != nil {
		s.metrics.StoreError("list_greetings")
		return nil, fmt.Errorf("list greetings: %w", err)
	}
	return greetings, nil
}

// BookDetail returns a book together with its most recent greetings.
func (s *GuestbookService) BookDetail(ctx context.Context, bookID int64) (*domain.Book, []*domain.Greeting, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}

	greetings, err := s.ListGreetings(ctx, book.ID, domain.MaxGreetings)
	if err != nil {
		return nil, nil, err
	}
	return book, greetings, nil
}

// Sign writes a greeting into an existing book, dated by the service clock.
// If the book does not exist nothing is written.
func (s *GuestbookService) Sign(ctx context.Context, bookID int64, content string) (*domain.Book, *domain.Greeting, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}

	greeting := domain.NewGreeting(book, content, s.now())
	if err := s.store.CreateGreeting(ctx, greeting); err != nil {
		s.metrics.StoreError("create_greeting")
		return nil, nil, fmt.Errorf("create greeting: %w", err)
	}

	s.metrics.GreetingSigned()
	s.logger.Info("greeting signed", "greeting_id", greeting.ID, "book_id", book.ID)

	if err := s.indexer.IndexGreeting(ctx, book, greeting); err != nil {
		s.logger.Warn("failed to index greeting", "greeting_id", greeting.ID, "error", err)
	}
	return book, greeting, nil
}

// Ping checks the store.
func (s *GuestbookService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
