package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/search"
	"github.com/listenupapp/guestbook/internal/store"
)

// SearchService bridges the search index with the store, handling document
// creation and query execution.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

var _ SearchIndexer = (*SearchService)(nil)

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexBook indexes a single book.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexDocument(search.BookToSearchDocument(book)); err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	s.logger.Debug("indexed book", "id", book.ID)
	return nil
}

// IndexGreeting indexes a single greeting under its book's name.
func (s *SearchService) IndexGreeting(_ context.Context, book *domain.Book, greeting *domain.Greeting) error {
	if err := s.index.IndexDocument(search.GreetingToSearchDocument(greeting, book)); err != nil {
		return fmt.Errorf("index greeting: %w", err)
	}
	s.logger.Debug("indexed greeting", "id", greeting.ID, "book_id", book.ID)
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the store.
// This reads every book and greeting - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	books, err := s.store.ListBooks(ctx, store.Unlimited)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(books))
	greetingCount := 0
	for _, book := range books {
		docs = append(docs, search.BookToSearchDocument(book))

		greetings, err := s.store.ListGreetings(ctx, book.ID, store.Unlimited)
		if err != nil {
			return fmt.Errorf("list greetings for book %d: %w", book.ID, err)
		}
		for _, g := range greetings {
			docs = append(docs, search.GreetingToSearchDocument(g, book))
		}
		greetingCount += len(greetings)
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index documents: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "books", len(books), "greetings", greetingCount)
	return nil
}
