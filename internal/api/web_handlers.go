package api

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/guestbook/internal/domain"
	domainerrors "github.com/listenupapp/guestbook/internal/errors"
	"github.com/listenupapp/guestbook/internal/http/response"
	"github.com/listenupapp/guestbook/internal/id"
	"github.com/listenupapp/guestbook/internal/render"
	"github.com/listenupapp/guestbook/internal/search"
)

// Form fields read by the HTML pages.
const (
	formBookName = "book_name"
	formContent  = "content"
)

// maxFormMemory bounds the part of a multipart body held in memory.
// Urlencoded bodies are capped by net/http at 10 MB.
const maxFormMemory = 32 << 20

// registerWebRoutes mounts the HTML pages. Book IDs only match digits, so
// any other segment falls through to the router's 404.
func (s *Server) registerWebRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.With(RateLimitMiddleware(s.opts.PostLimiter)).Post("/", s.handleCreateBookForm)

	s.router.Get("/books/{id:[0-9]+}", s.handleShowBook)
	s.router.With(RateLimitMiddleware(s.opts.PostLimiter)).Post("/books/{id:[0-9]+}/sign", s.handleSignForm)

	if s.services.Search != nil {
		s.router.Get("/search", s.handleSearchPage)
	}
}

// handleIndex lists books by name.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	books, err := s.services.Guestbook.ListBooks(r.Context(), domain.DefaultListLimit)
	if err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	s.renderPage(w, r, render.PageIndex, map[string]any{
		"books": books,
	})
}

// handleCreateBookForm creates a book from the book_name form field.
// POST /
func (s *Server) handleCreateBookForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	if _, err := s.services.Guestbook.CreateBook(r.Context(), r.Form.Get(formBookName)); err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	response.Redirect(w, r, "/")
}

// handleShowBook shows a book with its most recent greetings.
// GET /books/{id}
func (s *Server) handleShowBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := id.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	book, greetings, err := s.services.Guestbook.BookDetail(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	s.renderPage(w, r, render.PageShow, map[string]any{
		"book":      book,
		"greetings": greetings,
	})
}

// handleSignForm writes the content form field into a book.
// POST /books/{id}/sign
func (s *Server) handleSignForm(w http.ResponseWriter, r *http.Request) {
	bookID, err := id.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	if err := parseForm(r); err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	book, _, err := s.services.Guestbook.Sign(r.Context(), bookID, r.Form.Get(formContent))
	if err != nil {
		response.HandleError(w, err, s.log(r))
		return
	}

	response.Redirect(w, r, book.Path())
}

// handleSearchPage searches books and greetings. An empty query renders
// the form alone.
// GET /search?q=
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := map[string]any{
		"query":   query,
		"results": nil,
	}

	if query != "" {
		params := search.DefaultSearchParams()
		params.Query = query
		params.Highlight = false

		results, err := s.services.Search.Search(r.Context(), params)
		if err != nil {
			response.HandleError(w, err, s.log(r))
			return
		}
		data["results"] = results
	}

	s.renderPage(w, r, render.PageSearch, data)
}

// parseForm fills r.Form from the query string and the body. A body that
// cannot be read in full is a validation error, so no field is ever taken
// from a truncated form.
func parseForm(r *http.Request) error {
	var err error
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "malformed form body")
	}
	return nil
}

// renderPage renders a full page before writing anything, so a template
// failure still produces a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	data[render.SearchEnabledKey] = s.services.Search != nil

	var buf bytes.Buffer
	if err := s.services.Renderer.Render(&buf, page, data); err != nil {
		s.log(r).Error("Failed to render page", "page", page, "error", err)
		response.InternalError(w)
		return
	}
	response.HTML(w, buf.Bytes())
}
