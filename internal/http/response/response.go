// Package response provides the plain-text, HTML and redirect responses of
// the HTML pages, and maps domain errors onto them.
package response

import (
	"io"
	"log/slog"
	"net/http"

	domainerrors "github.com/listenupapp/guestbook/internal/errors"
)

// Content types.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Text writes body as text/plain with the given status code.
func Text(w http.ResponseWriter, status int, body string) {
	h := w.Header()
	h.Set("Content-Type", ContentTypeText)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Status writes the standard status text for status as a plain-text body.
func Status(w http.ResponseWriter, status int) {
	Text(w, status, http.StatusText(status))
}

// BadRequest writes "Bad Request" (400).
func BadRequest(w http.ResponseWriter) {
	Status(w, http.StatusBadRequest)
}

// NotFound writes "Not Found" (404).
func NotFound(w http.ResponseWriter) {
	Status(w, http.StatusNotFound)
}

// TooManyRequests writes "Too Many Requests" (429).
func TooManyRequests(w http.ResponseWriter) {
	Status(w, http.StatusTooManyRequests)
}

// InternalError writes "Internal Server Error" (500).
func InternalError(w http.ResponseWriter) {
	Status(w, http.StatusInternalServerError)
}

// HTML writes an already rendered page (200).
func HTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Redirect sends a 302 Found to location.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

// HandleError writes the plain-text response matching err's domain code.
// Errors without a code become 500 and are logged; the body never carries
// error details.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		Status(w, domainErr.HTTPStatus())
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w)
}
