package badgerdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/id"
)

// CreateGreeting assigns greeting an ID and writes it with its book index entry.
// The book is not re-checked; callers fetch it first.
func (s *Store) CreateGreeting(ctx context.Context, greeting *domain.Greeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	greetingID, err := nextID(s.greetingSeq)
	if err != nil {
		return fmt.Errorf("allocate greeting id: %w", err)
	}

	greeting.ID = greetingID
	data, err := json.Marshal(greeting)
	if err != nil {
		greeting.ID = 0
		return fmt.Errorf("marshal greeting: %w", err)
	}

	idxKey := bookGreetingKey(greeting.BookID, greeting.Date.UnixNano(), greetingID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(greetingKey(greetingID), data); err != nil {
			return err
		}
		return txn.Set(idxKey, []byte(id.Key(greetingID)))
	})
	if err != nil {
		greeting.ID = 0
		return fmt.Errorf("create greeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("greeting created", "greeting_id", greetingID, "book_id", greeting.BookID)
	}
	return nil
}

// ListGreetings scans the book's greeting index, newest first.
func (s *Store) ListGreetings(ctx context.Context, bookID int64, limit int) ([]*domain.Greeting, error) {
	greetings := []*domain.Greeting{}
	prefix := bookGreetingsPrefix(bookID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		if limit > 0 && limit < opts.PrefetchSize {
			opts.PrefetchSize = limit
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(greetings) >= limit {
				break
			}

			var greetingID int64
			err := it.Item().Value(func(val []byte) error {
				var err error
				greetingID, err = id.Parse(string(val))
				return err
			})
			if err != nil {
				return fmt.Errorf("read index entry: %w", err)
			}

			var greeting domain.Greeting
			if err := getJSON(txn, greetingKey(greetingID), &greeting); err != nil {
				return fmt.Errorf("greeting %d: %w", greetingID, err)
			}
			greetings = append(greetings, &greeting)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list greetings for book %d: %w", bookID, err)
	}
	return greetings, nil
}

// trailingID parses the fixed-width ID after the last NUL in an index key.
func trailingID(key []byte) (int64, error) {
	i := bytes.LastIndexByte(key, 0)
	if i < 0 {
		return 0, fmt.Errorf("malformed index key %q", key)
	}
	return id.Parse(string(key[i+1:]))
}
