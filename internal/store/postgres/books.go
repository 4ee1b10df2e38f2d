package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/store"
)

// CreateBook inserts a book and sets its ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	var bookID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO books (name) VALUES ($1) RETURNING id`, book.Name,
	).Scan(&bookID)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	book.ID = bookID
	return nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	var book domain.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM books WHERE id = $1`, bookID,
	).Scan(&book.ID, &book.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", bookID, err)
	}
	return &book, nil
}

// ListBooks returns books ordered by the bytes of their name, then ID.
func (s *Store) ListBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM books ORDER BY name COLLATE "C" ASC, id ASC LIMIT $1`,
		limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(&book.ID, &book.Name); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, &book)
	}
	return books, rows.Err()
}
