// Package search provides full-text search over books and greetings using
// Bleve. Both kinds share one index and are told apart by a type field.
package search

import (
	"strconv"
	"time"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/id"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook     DocType = "book"
	DocTypeGreeting DocType = "greeting"
)

// SearchDocument is the unified document structure for the Bleve index.
//
// Greetings carry their book's name so a query for a book name also finds
// what was written in it.
type SearchDocument struct {
	ID   string  `json:"id"` // "book:<id>" or "greeting:<id>"
	Type DocType `json:"type"`

	BookID  int64  `json:"book_id"`
	Name    string `json:"name"`              // Book name (denormalized for greetings)
	Content string `json:"content,omitempty"` // Greetings only

	Date int64 `json:"date,omitempty"` // Unix millis, greetings only
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":      d.ID,
		"type":    string(d.Type),
		"book_id": float64(d.BookID),
		"name":    d.Name,
	}

	if d.Content != "" {
		m["content"] = d.Content
	}
	if d.Date != 0 {
		m["date"] = float64(d.Date)
	}

	return m
}

// BookDocID returns the index document ID for a book.
func BookDocID(bookID int64) string {
	return string(DocTypeBook) + ":" + strconv.FormatInt(bookID, 10)
}

// GreetingDocID returns the index document ID for a greeting.
func GreetingDocID(greetingID int64) string {
	return string(DocTypeGreeting) + ":" + strconv.FormatInt(greetingID, 10)
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	return &SearchDocument{
		ID:     BookDocID(book.ID),
		Type:   DocTypeBook,
		BookID: book.ID,
		Name:   book.Name,
	}
}

// GreetingToSearchDocument converts a domain Greeting to a SearchDocument.
// The owning book is passed in because the search package does not read the store.
func GreetingToSearchDocument(g *domain.Greeting, book *domain.Book) *SearchDocument {
	return &SearchDocument{
		ID:      GreetingDocID(g.ID),
		Type:    DocTypeGreeting,
		BookID:  g.BookID,
		Name:    book.Name,
		Content: g.Content,
		Date:    g.Date.UnixMilli(),
	}
}

// Path returns the HTML page a hit links to.
func (h SearchHit) Path() string {
	return "/books/" + id.Format(h.BookID)
}

// Time returns the greeting date of a hit, or the zero time for books.
func (h SearchHit) Time() time.Time {
	if h.Date == 0 {
		return time.Time{}
	}
	return time.UnixMilli(h.Date).UTC()
}
