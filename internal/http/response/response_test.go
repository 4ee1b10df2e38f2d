package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/listenupapp/guestbook/internal/errors"
)

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, "Bad Request"},
		{"not found", NotFound, http.StatusNotFound, "Not Found"},
		{"too many requests", TooManyRequests, http.StatusTooManyRequests, "Too Many Requests"},
		{"internal error", InternalError, http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, ContentTypeText, w.Header().Get("Content-Type"))
		})
	}
}

func TestHTML(t *testing.T) {
	w := httptest.NewRecorder()
	HTML(w, []byte("<p>ok</p>"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeHTML, w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>ok</p>", w.Body.String())
}

func TestRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/books/5/sign", nil)
	Redirect(w, r, "/books/5")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/books/5", w.Header().Get("Location"))
}

func TestHandleError(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", domainerrors.NotFoundf("book %d not found", 9), http.StatusNotFound, "Not Found"},
		{"wrapped not found", fmt.Errorf("sign: %w", domainerrors.NotFound("gone")), http.StatusNotFound, "Not Found"},
		{"validation", domainerrors.Validation("bad id"), http.StatusBadRequest, "Bad Request"},
		{"internal code", domainerrors.Internal("secret detail"), http.StatusInternalServerError, "Internal Server Error"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, logger)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}
