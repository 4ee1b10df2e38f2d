package domain

import "time"

// Greeting is a timestamped text entry belonging to exactly one book.
// BookID replaces a datastore ancestor key: greetings are found through an
// index on (BookID, Date desc).
type Greeting struct {
	ID      int64     `json:"id"`
	BookID  int64     `json:"book_id"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// NewGreeting returns an unsaved greeting for book, dated at.
// Content is kept verbatim; callers pass the current time explicitly.
func NewGreeting(book *Book, content string, at time.Time) *Greeting {
	return &Greeting{
		BookID:  book.ID,
		Content: content,
		Date:    at.UTC(),
	}
}
