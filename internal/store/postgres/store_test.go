package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/store"
	"github.com/listenupapp/guestbook/internal/store/storetest"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db, nil), mock
}

func TestCreateBook_Success(t *testing.T) {
	s, mock := newStoreWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+books\s*\(name\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs("Alice's Library").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	book := domain.NewBook("Alice's Library")
	require.NoError(t, s.CreateBook(context.Background(), book))
	assert.Equal(t, int64(42), book.ID)
}

func TestCreateBook_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+books`).
		WithArgs("x").
		WillReturnError(errors.New("db down"))

	book := domain.NewBook("x")
	err := s.CreateBook(context.Background(), book)
	assert.ErrorContains(t, err, "insert book: db down")
	assert.Zero(t, book.ID)
}

func TestGetBook_Found(t *testing.T) {
	s, mock := newStoreWithMock(t)

	q := `(?s)^SELECT\s+id,\s*name\s+FROM\s+books\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(7), "seven"))

	got, err := s.GetBook(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &domain.Book{ID: 7, Name: "seven"}, got)
}

func TestGetBook_NotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT\s+id,\s*name\s+FROM\s+books`).
		WithArgs(int64(999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetBook(context.Background(), 999999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListBooks_OrdersByteWise(t *testing.T) {
	s, mock := newStoreWithMock(t)

	q := `(?s)ORDER\s+BY\s+name\s+COLLATE\s+"C"\s+ASC,\s*id\s+ASC\s+LIMIT\s+\$1`
	mock.ExpectQuery(q).
		WithArgs(int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "Zulu").
			AddRow(int64(1), "alpha"))

	books, err := s.ListBooks(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Zulu", books[0].Name)
	assert.Equal(t, "alpha", books[1].Name)
}

func TestListBooks_UnlimitedPassesNull(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM\s+books\s+ORDER\s+BY`).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	books, err := s.ListBooks(context.Background(), store.Unlimited)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestCreateGreeting_Success(t *testing.T) {
	s, mock := newStoreWithMock(t)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q := `(?s)^INSERT\s+INTO\s+greetings\s*\(book_id,\s*content,\s*date\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs(int64(3), "Hello!", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	greeting := domain.NewGreeting(&domain.Book{ID: 3}, "Hello!", at)
	require.NoError(t, s.CreateGreeting(context.Background(), greeting))
	assert.Equal(t, int64(11), greeting.ID)
}

func TestListGreetings_NewestFirst(t *testing.T) {
	s, mock := newStoreWithMock(t)

	newer := time.Date(2024, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	older := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)

	q := `(?s)WHERE\s+book_id\s*=\s*\$1\s+ORDER\s+BY\s+date\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$2`
	mock.ExpectQuery(q).
		WithArgs(int64(3), int64(domain.MaxGreetings)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "book_id", "content", "date"}).
			AddRow(int64(2), int64(3), "second", newer).
			AddRow(int64(1), int64(3), "first", older))

	greetings, err := s.ListGreetings(context.Background(), 3, domain.MaxGreetings)
	require.NoError(t, err)
	require.Len(t, greetings, 2)
	assert.Equal(t, "second", greetings[0].Content)
	assert.Equal(t, time.UTC, greetings[0].Date.Location())
	assert.True(t, newer.Equal(greetings[0].Date))
}

func TestListGreetings_QueryError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM\s+greetings`).
		WithArgs(int64(3), nil).
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListGreetings(context.Background(), 3, store.Unlimited)
	assert.ErrorContains(t, err, "list greetings for book 3")
}

// TestStoreConformance runs against a real server when
// GUESTBOOK_TEST_POSTGRES_URL points at a disposable database.
func TestStoreConformance(t *testing.T) {
	dsn := os.Getenv("GUESTBOOK_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("GUESTBOOK_TEST_POSTGRES_URL not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := Open(ctx, dsn, nil)
		require.NoError(t, err)
		_, err = s.db.ExecContext(ctx, `TRUNCATE greetings, books RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
