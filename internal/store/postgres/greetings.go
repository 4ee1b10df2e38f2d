package postgres

import (
	"context"
	"fmt"

	"github.com/listenupapp/guestbook/internal/domain"
)

// CreateGreeting inserts a greeting and sets its ID.
func (s *Store) CreateGreeting(ctx context.Context, greeting *domain.Greeting) error {
	var greetingID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO greetings (book_id, content, date) VALUES ($1, $2, $3) RETURNING id`,
		greeting.BookID, greeting.Content, greeting.Date.UTC(),
	).Scan(&greetingID)
	if err != nil {
		return fmt.Errorf("insert greeting: %w", err)
	}
	greeting.ID = greetingID
	return nil
}

// ListGreetings returns a book's greetings, newest first.
func (s *Store) ListGreetings(ctx context.Context, bookID int64, limit int) ([]*domain.Greeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, content, date
		FROM greetings
		WHERE book_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2`,
		bookID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list greetings for book %d: %w", bookID, err)
	}
	defer rows.Close()

	greetings := []*domain.Greeting{}
	for rows.Next() {
		var g domain.Greeting
		if err := rows.Scan(&g.ID, &g.BookID, &g.Content, &g.Date); err != nil {
			return nil, fmt.Errorf("scan greeting: %w", err)
		}
		g.Date = g.Date.UTC()
		greetings = append(greetings, &g)
	}
	return greetings, rows.Err()
}
