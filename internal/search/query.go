package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query  string    // User's search query
	Types  []DocType // Document types to include (empty = all)
	BookID int64     // Restrict to one book (0 = all)

	Limit  int
	Offset int

	SortBy    string // SortRelevance or SortRecent
	Highlight bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		SortBy:    SortRelevance,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	BookID     int64             `json:"book_id"`
	Name       string            `json:"name"`
	Content    string            `json:"content,omitempty"`
	Date       int64             `json:"date,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)

	if params.SortBy == SortRecent {
		searchRequest.SortBy([]string{"-date", "-_score"})
	} else {
		searchRequest.SortBy([]string{"-_score"})
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("content")
	}

	searchRequest.Fields = []string{"type", "book_id", "name", "content", "date"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if b, ok := hit.Fields["book_id"].(float64); ok {
			searchHit.BookID = int64(b)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if c, ok := hit.Fields["content"].(string); ok {
			searchHit.Content = c
		}
		if d, ok := hit.Fields["date"].(float64); ok {
			searchHit.Date = int64(d)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(2.0)

		contentMatch := bleve.NewMatchQuery(params.Query)
		contentMatch.SetField("content")

		// Typo tolerance on book names
		fuzzyName := bleve.NewMatchQuery(params.Query)
		fuzzyName.SetField("name")
		fuzzyName.SetFuzziness(1)
		fuzzyName.SetBoost(0.5)

		queries = append(queries, bleve.NewDisjunctionQuery(nameMatch, contentMatch, fuzzyName))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if params.BookID > 0 {
		v := float64(params.BookID)
		inclusive := true
		bookQuery := bleve.NewNumericRangeInclusiveQuery(&v, &v, &inclusive, &inclusive)
		bookQuery.SetField("book_id")
		queries = append(queries, bookQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
