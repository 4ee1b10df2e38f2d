package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/store"
)

// CreateBook assigns book an ID and writes it with its name index entry.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bookID, err := nextID(s.bookSeq)
	if err != nil {
		return fmt.Errorf("allocate book id: %w", err)
	}

	book.ID = bookID
	data, err := json.Marshal(book)
	if err != nil {
		book.ID = 0
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(bookKey(bookID), data); err != nil {
			return err
		}
		return txn.Set(bookNameKey(book.Name, bookID), nil)
	})
	if err != nil {
		book.ID = 0
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("book created", "book_id", bookID)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, bookKey(bookID), &book)
	})
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", bookID, err)
	}
	return &book, nil
}

// ListBooks scans the name index in order.
func (s *Store) ListBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	books := []*domain.Book{}
	prefix := bookNamePrefix()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(books) >= limit {
				break
			}

			bookID, err := trailingID(it.Item().Key())
			if err != nil {
				return err
			}

			var book domain.Book
			if err := getJSON(txn, bookKey(bookID), &book); err != nil {
				return fmt.Errorf("book %d: %w", bookID, err)
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// getJSON decodes the value at key into dest, mapping a missing key to
// store.ErrNotFound.
func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}
