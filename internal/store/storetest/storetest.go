// Package storetest holds a conformance suite run against every store.Store
// backend.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/store"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) store.Store

// base is second-aligned so every backend round-trips it exactly.
var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Run exercises newStore against the behavior every backend must share.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("CreateBookAssignsID", func(t *testing.T) { testCreateBookAssignsID(t, newStore(t)) })
	t.Run("GetBook", func(t *testing.T) { testGetBook(t, newStore(t)) })
	t.Run("GetBookNotFound", func(t *testing.T) { testGetBookNotFound(t, newStore(t)) })
	t.Run("ListBooksOrderedByName", func(t *testing.T) { testListBooksOrderedByName(t, newStore(t)) })
	t.Run("ListBooksPrefixBeforeNUL", func(t *testing.T) { testListBooksPrefixBeforeNUL(t, newStore(t)) })
	t.Run("ListBooksLimit", func(t *testing.T) { testListBooksLimit(t, newStore(t)) })
	t.Run("ListBooksEmpty", func(t *testing.T) { testListBooksEmpty(t, newStore(t)) })
	t.Run("CreateGreetingAssignsID", func(t *testing.T) { testCreateGreetingAssignsID(t, newStore(t)) })
	t.Run("ListGreetingsNewestFirst", func(t *testing.T) { testListGreetingsNewestFirst(t, newStore(t)) })
	t.Run("ListGreetingsScopedToBook", func(t *testing.T) { testListGreetingsScopedToBook(t, newStore(t)) })
	t.Run("ListGreetingsLimit", func(t *testing.T) { testListGreetingsLimit(t, newStore(t)) })
	t.Run("VerbatimText", func(t *testing.T) { testVerbatimText(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, newStore(t)) })
}

func createBook(t *testing.T, s store.Store, name string) *domain.Book {
	t.Helper()
	book := domain.NewBook(name)
	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

func createGreeting(t *testing.T, s store.Store, book *domain.Book, content string, at time.Time) *domain.Greeting {
	t.Helper()
	greeting := domain.NewGreeting(book, content, at)
	require.NoError(t, s.CreateGreeting(context.Background(), greeting))
	return greeting
}

func bookNames(books []*domain.Book) []string {
	names := make([]string, len(books))
	for i, b := range books {
		names[i] = b.Name
	}
	return names
}

func greetingContents(greetings []*domain.Greeting) []string {
	contents := make([]string, len(greetings))
	for i, g := range greetings {
		contents[i] = g.Content
	}
	return contents
}

func testCreateBookAssignsID(t *testing.T, s store.Store) {
	first := createBook(t, s, "first")
	second := createBook(t, s, "second")

	assert.Positive(t, first.ID)
	assert.Positive(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func testGetBook(t *testing.T, s store.Store) {
	created := createBook(t, s, "Alice's Library")

	got, err := s.GetBook(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testGetBookNotFound(t *testing.T, s store.Store) {
	_, err := s.GetBook(context.Background(), 999999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListBooksOrderedByName(t *testing.T, s store.Store) {
	createBook(t, s, "charlie")
	dupFirst := createBook(t, s, "bravo")
	createBook(t, s, "Zulu")
	createBook(t, s, "alpha")
	dupSecond := createBook(t, s, "bravo")
	createBook(t, s, "")

	books, err := s.ListBooks(context.Background(), store.Unlimited)
	require.NoError(t, err)

	// Byte order: empty < upper case < lower case.
	assert.Equal(t, []string{"", "Zulu", "alpha", "bravo", "bravo", "charlie"}, bookNames(books))
	assert.Equal(t, dupFirst.ID, books[3].ID)
	assert.Equal(t, dupSecond.ID, books[4].ID)
}

func testListBooksPrefixBeforeNUL(t *testing.T, s store.Store) {
	// PostgreSQL text cannot hold NUL bytes.
	if err := s.CreateBook(context.Background(), domain.NewBook("a\x00")); err != nil {
		t.Skipf("backend rejects NUL in names: %v", err)
	}
	createBook(t, s, "a\x01")
	createBook(t, s, "a")
	createBook(t, s, "a\x00b")

	books, err := s.ListBooks(context.Background(), store.Unlimited)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a\x00", "a\x00b", "a\x01"}, bookNames(books))
}

func testListBooksLimit(t *testing.T, s store.Store) {
	for i := range 5 {
		createBook(t, s, fmt.Sprintf("book-%d", i))
	}

	books, err := s.ListBooks(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"book-0", "book-1", "book-2"}, bookNames(books))

	all, err := s.ListBooks(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func testListBooksEmpty(t *testing.T, s store.Store) {
	books, err := s.ListBooks(context.Background(), 20)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func testCreateGreetingAssignsID(t *testing.T, s store.Store) {
	book := createBook(t, s, "guests")
	greeting := createGreeting(t, s, book, "Hello!", base)

	assert.Positive(t, greeting.ID)
	assert.Equal(t, book.ID, greeting.BookID)

	got, err := s.ListGreetings(context.Background(), book.ID, store.Unlimited)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, greeting.ID, got[0].ID)
	assert.Equal(t, "Hello!", got[0].Content)
	assert.True(t, base.Equal(got[0].Date), "date round-trips: got %s", got[0].Date)
}

func testListGreetingsNewestFirst(t *testing.T, s store.Store) {
	book := createBook(t, s, "guests")

	createGreeting(t, s, book, "middle", base.Add(time.Minute))
	createGreeting(t, s, book, "oldest", base.Add(-time.Hour))
	createGreeting(t, s, book, "newest", base.Add(time.Hour))
	createGreeting(t, s, book, "tie-first", base)
	createGreeting(t, s, book, "tie-second", base)

	got, err := s.ListGreetings(context.Background(), book.ID, store.Unlimited)
	require.NoError(t, err)

	// Equal dates list the higher ID first.
	assert.Equal(t,
		[]string{"newest", "middle", "tie-second", "tie-first", "oldest"},
		greetingContents(got))
}

func testListGreetingsScopedToBook(t *testing.T, s store.Store) {
	mine := createBook(t, s, "mine")
	theirs := createBook(t, s, "theirs")
	empty := createBook(t, s, "empty")

	createGreeting(t, s, mine, "for mine", base)
	createGreeting(t, s, theirs, "for theirs", base.Add(time.Second))

	got, err := s.ListGreetings(context.Background(), mine.ID, store.Unlimited)
	require.NoError(t, err)
	assert.Equal(t, []string{"for mine"}, greetingContents(got))

	none, err := s.ListGreetings(context.Background(), empty.ID, store.Unlimited)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testListGreetingsLimit(t *testing.T, s store.Store) {
	book := createBook(t, s, "busy")
	for i := range 25 {
		createGreeting(t, s, book, fmt.Sprintf("greeting-%02d", i), base.Add(time.Duration(i)*time.Second))
	}

	got, err := s.ListGreetings(context.Background(), book.ID, domain.MaxGreetings)
	require.NoError(t, err)
	require.Len(t, got, domain.MaxGreetings)
	assert.Equal(t, "greeting-24", got[0].Content)
	assert.Equal(t, "greeting-05", got[len(got)-1].Content)
}

func testVerbatimText(t *testing.T, s store.Store) {
	name := "  <b>Bold</b> & \"quoted\"  "
	content := "<script>alert('x')</script>\n"

	book := createBook(t, s, name)
	createGreeting(t, s, book, content, base)
	createGreeting(t, s, book, "", base.Add(time.Second))

	got, err := s.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	greetings, err := s.ListGreetings(context.Background(), book.ID, store.Unlimited)
	require.NoError(t, err)
	assert.Equal(t, []string{"", content}, greetingContents(greetings))
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
