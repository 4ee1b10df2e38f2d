package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/guestbook/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search guestbook",
		Description: "Full-text search across book names and greetings",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching.
type SearchInput struct {
	Query  string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search query"`
	Types  string `query:"types" maxLength:"100" doc:"Comma-separated types to search (book,greeting). Omit for all."`
	BookID int64  `query:"book_id" minimum:"0" doc:"Restrict results to one book"`
	Sort   string `query:"sort" enum:"relevance,recent" default:"relevance" doc:"Result order"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Max results"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Document ID (book:N or greeting:N)"`
	Type       string            `json:"type" doc:"Type: book or greeting"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	BookID     int64             `json:"book_id" doc:"Book the hit belongs to"`
	Name       string            `json:"name" doc:"Book name"`
	Content    string            `json:"content,omitempty" doc:"Greeting text (greetings only)"`
	Path       string            `json:"path" doc:"URL of the book's HTML page"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.SearchParams{
		Query:     input.Query,
		BookID:    input.BookID,
		Limit:     input.Limit,
		Offset:    input.Offset,
		SortBy:    input.Sort,
		Highlight: true,
	}

	if input.Types != "" {
		for t := range strings.SplitSeq(input.Types, ",") {
			switch search.DocType(strings.TrimSpace(t)) {
			case search.DocTypeBook:
				params.Types = append(params.Types, search.DocTypeBook)
			case search.DocTypeGreeting:
				params.Types = append(params.Types, search.DocTypeGreeting)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResult{
			ID:         h.ID,
			Type:       string(h.Type),
			Score:      h.Score,
			BookID:     h.BookID,
			Name:       h.Name,
			Content:    h.Content,
			Path:       h.Path(),
			Highlights: h.Highlights,
		}
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}
