// Package main prints a summary of a badger guestbook database.
//
// The database is opened read-only, so the server must be stopped first.
//
// Usage:
//
//	DB_PATH=~/Guestbook/data/badger go run ./cmd/dbinspect
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/guestbook/internal/domain"
)

var sample = flag.Int("n", 5, "Number of books to print")

var (
	bookPrefix     = []byte("book:")
	greetingPrefix = []byte("greeting:")
	indexInfix     = []byte("idx:")
)

// prefixStats counts records and index entries under a key prefix.
type prefixStats struct {
	records int
	indexes int
	bytes   int64
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Guestbook/data/badger")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\n\n", dbPath)

	var books, greetings prefixStats
	var shown []domain.Book
	greetingsPerBook := make(map[int64]int)

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()

			var stats *prefixStats
			var rest []byte
			switch {
			case bytes.HasPrefix(key, bookPrefix):
				stats, rest = &books, key[len(bookPrefix):]
			case bytes.HasPrefix(key, greetingPrefix):
				stats, rest = &greetings, key[len(greetingPrefix):]
			default:
				continue
			}

			stats.bytes += item.EstimatedSize()
			if bytes.HasPrefix(rest, indexInfix) {
				stats.indexes++
				continue
			}
			stats.records++

			if stats == &books && len(shown) >= *sample {
				continue
			}
			err := item.Value(func(val []byte) error {
				if stats == &books {
					var book domain.Book
					if err := json.Unmarshal(val, &book); err != nil {
						return err
					}
					shown = append(shown, book)
					return nil
				}
				var greeting domain.Greeting
				if err := json.Unmarshal(val, &greeting); err != nil {
					return err
				}
				greetingsPerBook[greeting.BookID]++
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan database: %v", err)
	}

	fmt.Printf("Books:     %d records, %d index entries, ~%d bytes\n", books.records, books.indexes, books.bytes)
	fmt.Printf("Greetings: %d records, %d index entries, ~%d bytes\n", greetings.records, greetings.indexes, greetings.bytes)

	// Every book has one name entry and every greeting one book entry.
	if books.records != books.indexes {
		fmt.Printf("WARNING: %d books but %d name index entries\n", books.records, books.indexes)
	}
	if greetings.records != greetings.indexes {
		fmt.Printf("WARNING: %d greetings but %d book index entries\n", greetings.records, greetings.indexes)
	}

	if len(shown) > 0 {
		fmt.Println()
		fmt.Println("=== Sample Books ===")
		for _, book := range shown {
			fmt.Printf("[%d] %q (%d greetings)\n", book.ID, book.Name, greetingsPerBook[book.ID])
		}
	}
}
