package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/guestbook/internal/domain"
)

// setupTestIndex creates a temporary on-disk search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func seed(t *testing.T, index *SearchIndex) {
	t.Helper()

	garden := &domain.Book{ID: 1, Name: "Garden Party"}
	harbor := &domain.Book{ID: 2, Name: "Harbor Lights"}

	docs := []*SearchDocument{
		BookToSearchDocument(garden),
		BookToSearchDocument(harbor),
		GreetingToSearchDocument(&domain.Greeting{
			ID: 10, BookID: 1, Content: "Lovely roses everywhere",
			Date: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}, garden),
		GreetingToSearchDocument(&domain.Greeting{
			ID: 11, BookID: 2, Content: "The boats were lovely at night",
			Date: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		}, harbor),
	}
	require.NoError(t, index.IndexDocuments(docs))
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	assert.True(t, index.Created())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexDocument(BookToSearchDocument(&domain.Book{ID: 1, Name: "kept"})))
	require.NoError(t, index.Close())

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.False(t, reopened.Created())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_MatchesNamesAndContent(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "lovely", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
	for _, hit := range result.Hits {
		assert.Equal(t, DocTypeGreeting, hit.Type)
	}
}

func TestSearch_StemsContent(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "rose", Limit: 10})
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	hit := result.Hits[0]
	assert.Equal(t, GreetingDocID(10), hit.ID)
	assert.Equal(t, int64(1), hit.BookID)
	assert.Equal(t, "Garden Party", hit.Name)
	assert.Equal(t, "/books/1", hit.Path())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), hit.Time())
}

func TestSearch_TypeFilter(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	result, err := index.Search(context.Background(), SearchParams{
		Query: "harbor",
		Types: []DocType{DocTypeBook},
		Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, BookDocID(2), result.Hits[0].ID)
	assert.True(t, result.Hits[0].Time().IsZero())
}

func TestSearch_BookFilterAndRecentSort(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	result, err := index.Search(context.Background(), SearchParams{
		Types:  []DocType{DocTypeGreeting},
		SortBy: SortRecent,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, GreetingDocID(11), result.Hits[0].ID)

	scoped, err := index.Search(context.Background(), SearchParams{BookID: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), scoped.Total)
}

func TestSearch_FuzzyName(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "gardn", Types: []DocType{DocTypeBook}, Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, BookDocID(1), result.Hits[0].ID)
}

func TestRebuild_EmptiesIndex(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInMemoryIndex(t *testing.T) {
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	seed(t, index)
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}
