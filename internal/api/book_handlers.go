package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/guestbook/internal/domain"
	domainerrors "github.com/listenupapp/guestbook/internal/errors"
	"github.com/listenupapp/guestbook/internal/logger"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns books ordered by name",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Creates a book. The name is stored verbatim and may be empty.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its most recent greetings, newest first",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGreetings",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/greetings",
		Summary:     "List greetings",
		Description: "Returns a book's most recent greetings, newest first",
		Tags:        []string{"Greetings"},
	}, s.handleListGreetings)

	huma.Register(s.api, huma.Operation{
		OperationID:   "signBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/greetings",
		Summary:       "Sign book",
		Description:   "Writes a greeting into a book, dated by the server",
		Tags:          []string{"Greetings"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSignBook)
}

// === DTOs ===

// BookResponse is a book in API responses.
type BookResponse struct {
	ID   int64  `json:"id" doc:"Book ID"`
	Name string `json:"name" doc:"Book name"`
	Path string `json:"path" doc:"URL of the book's HTML page"`
}

// GreetingResponse is a greeting in API responses.
type GreetingResponse struct {
	ID      int64     `json:"id" doc:"Greeting ID"`
	BookID  int64     `json:"book_id" doc:"ID of the book the greeting belongs to"`
	Content string    `json:"content" doc:"Greeting text, verbatim"`
	Date    time.Time `json:"date" doc:"When the greeting was written (UTC)"`
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Max books to return"`
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body struct {
		Books []BookResponse `json:"books" doc:"Books ordered by name"`
	}
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Name string `json:"name" doc:"Book name"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a book and its greetings for Huma.
type BookDetailOutput struct {
	Body struct {
		Book      BookResponse       `json:"book" doc:"The book"`
		Greetings []GreetingResponse `json:"greetings" doc:"Most recent greetings, newest first"`
	}
}

// ListGreetingsInput contains parameters for listing a book's greetings.
type ListGreetingsInput struct {
	ID    int64 `path:"id" doc:"Book ID"`
	Limit int   `query:"limit" minimum:"1" maximum:"20" default:"20" doc:"Max greetings to return"`
}

// ListGreetingsOutput wraps the greeting list for Huma.
type ListGreetingsOutput struct {
	Body struct {
		Greetings []GreetingResponse `json:"greetings" doc:"Greetings, newest first"`
	}
}

// SignBookRequest is the request body for signing a book.
type SignBookRequest struct {
	Content string `json:"content" doc:"Greeting text"`
}

// SignBookInput wraps the sign request for Huma.
type SignBookInput struct {
	ID   int64 `path:"id" doc:"Book ID"`
	Body SignBookRequest
}

// GreetingOutput wraps a single greeting for Huma.
type GreetingOutput struct {
	Body GreetingResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := s.services.Guestbook.ListBooks(ctx, input.Limit)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &ListBooksOutput{}
	out.Body.Books = toBookResponses(books)
	return out, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Guestbook.CreateBook(ctx, input.Body.Name)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	book, greetings, err := s.services.Guestbook.BookDetail(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &BookDetailOutput{}
	out.Body.Book = toBookResponse(book)
	out.Body.Greetings = toGreetingResponses(greetings)
	return out, nil
}

func (s *Server) handleListGreetings(ctx context.Context, input *ListGreetingsInput) (*ListGreetingsOutput, error) {
	if _, err := s.services.Guestbook.GetBook(ctx, input.ID); err != nil {
		return nil, s.apiError(ctx, err)
	}

	greetings, err := s.services.Guestbook.ListGreetings(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &ListGreetingsOutput{}
	out.Body.Greetings = toGreetingResponses(greetings)
	return out, nil
}

func (s *Server) handleSignBook(ctx context.Context, input *SignBookInput) (*GreetingOutput, error) {
	_, greeting, err := s.services.Guestbook.Sign(ctx, input.ID, input.Body.Content)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &GreetingOutput{Body: toGreetingResponse(greeting)}, nil
}

// apiError passes coded domain errors through to the error hook and turns
// anything else into a logged 500.
func (s *Server) apiError(ctx context.Context, err error) error {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		return err
	}
	logger.FromContext(ctx, s.logger).Error("API request failed", "error", err)
	return internalError(err)
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{ID: b.ID, Name: b.Name, Path: b.Path()}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

func toGreetingResponse(g *domain.Greeting) GreetingResponse {
	return GreetingResponse{ID: g.ID, BookID: g.BookID, Content: g.Content, Date: g.Date}
}

func toGreetingResponses(greetings []*domain.Greeting) []GreetingResponse {
	out := make([]GreetingResponse, len(greetings))
	for i, g := range greetings {
		out[i] = toGreetingResponse(g)
	}
	return out
}
