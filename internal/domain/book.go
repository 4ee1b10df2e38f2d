// Package domain contains the core entities of the guestbook: books and the
// greetings visitors leave in them.
package domain

import "github.com/listenupapp/guestbook/internal/id"

// DefaultListLimit is the page size used when listing books or greetings
// without an explicit limit.
const DefaultListLimit = 20

// MaxGreetings is the most greetings ever returned for one book.
const MaxGreetings = 20

// Book is a named guestbook that owns zero or more greetings.
// Books are immutable once created.
type Book struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewBook returns an unsaved book. The store assigns the ID.
// The name is kept verbatim; empty names are allowed.
func NewBook(name string) *Book {
	return &Book{Name: name}
}

// Path returns the URL of the book's detail page.
func (b *Book) Path() string {
	return "/books/" + id.Format(b.ID)
}

// SignPath returns the URL the sign form posts to.
func (b *Book) SignPath() string {
	return b.Path() + "/sign"
}
