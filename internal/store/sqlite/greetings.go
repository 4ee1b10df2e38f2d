package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/guestbook/internal/domain"
)

// CreateGreeting inserts a greeting and sets its ID.
func (s *Store) CreateGreeting(ctx context.Context, greeting *domain.Greeting) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO greetings (book_id, content, date) VALUES (?, ?, ?)`,
		greeting.BookID, greeting.Content, formatTime(greeting.Date))
	if err != nil {
		return fmt.Errorf("insert greeting: %w", err)
	}

	greetingID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("greeting id: %w", err)
	}
	greeting.ID = greetingID
	return nil
}

// ListGreetings returns a book's greetings, newest first.
func (s *Store) ListGreetings(ctx context.Context, bookID int64, limit int) ([]*domain.Greeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, content, date
		FROM greetings
		WHERE book_id = ?
		ORDER BY date DESC, id DESC
		LIMIT ?`,
		bookID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list greetings for book %d: %w", bookID, err)
	}
	defer rows.Close()

	greetings := []*domain.Greeting{}
	for rows.Next() {
		var (
			g    domain.Greeting
			date string
		)
		if err := rows.Scan(&g.ID, &g.BookID, &g.Content, &date); err != nil {
			return nil, fmt.Errorf("scan greeting: %w", err)
		}
		if g.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse greeting %d date: %w", g.ID, err)
		}
		greetings = append(greetings, &g)
	}
	return greetings, rows.Err()
}
