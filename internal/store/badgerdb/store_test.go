package badgerdb

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/store"
	"github.com/listenupapp/guestbook/internal/store/storetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return setupTestStore(t)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, nil)
	require.NoError(t, err)

	book := domain.NewBook("durable")
	require.NoError(t, s.CreateBook(ctx, book))
	greeting := domain.NewGreeting(book, "still here", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, s.CreateGreeting(ctx, greeting))
	require.NoError(t, s.Close())

	s, err = New(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Name)

	// Released sequences must not hand out an ID twice.
	next := domain.NewBook("after reopen")
	require.NoError(t, s.CreateBook(ctx, next))
	assert.Greater(t, next.ID, book.ID)

	greetings, err := s.ListGreetings(ctx, book.ID, store.Unlimited)
	require.NoError(t, err)
	require.Len(t, greetings, 1)
	assert.Equal(t, "still here", greetings[0].Content)
}

func TestStore_PingAfterClose(t *testing.T) {
	s, err := NewInMemory(nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(context.Background()), store.ErrClosed)
}

func TestStore_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	book := domain.NewBook("never")
	assert.ErrorIs(t, s.CreateBook(ctx, book), context.Canceled)
	assert.Zero(t, book.ID)
}

func TestDescending(t *testing.T) {
	values := []int64{-5, 0, 1, 42, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano()}
	for i := 1; i < len(values); i++ {
		assert.Less(t, descending(values[i]), descending(values[i-1]),
			"%d should sort before %d", values[i], values[i-1])
	}
}

func TestTrailingID(t *testing.T) {
	got, err := trailingID(bookNameKey("with\x00nul", 7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	_, err = trailingID([]byte("no-separator"))
	assert.Error(t, err)
}

func TestBookNameKey_ByteOrder(t *testing.T) {
	// Each name is byte-wise greater than the one before it.
	names := []string{"", "\x00", "a", "a\x00", "a\x00\x00", "a\x00b", "a\x01", "ab", "b"}
	for i := 1; i < len(names); i++ {
		prev := bookNameKey(names[i-1], 9)
		next := bookNameKey(names[i], 1)
		assert.Negative(t, bytes.Compare(prev, next), "%q should sort before %q", names[i-1], names[i])
	}

	assert.Negative(t, bytes.Compare(bookNameKey("a", 1), bookNameKey("a", 2)))
}
