package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/guestbook/internal/errors"
	"github.com/listenupapp/guestbook/internal/store"
)

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   domainerrors.Code
	}{
		{http.StatusBadRequest, domainerrors.CodeValidation},
		{http.StatusUnprocessableEntity, domainerrors.CodeValidation},
		{http.StatusNotFound, domainerrors.CodeNotFound},
		{http.StatusTooManyRequests, domainerrors.CodeTooManyRequests},
		{http.StatusInternalServerError, domainerrors.CodeInternal},
		{http.StatusTeapot, domainerrors.CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, string(tt.want), statusToCode(tt.status), tt.status)
	}
}

func TestErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	t.Run("domain error keeps its status and details", func(t *testing.T) {
		err := domainerrors.ValidationWithDetails("bad input", map[string]string{"name": "is required"})

		got := huma.NewError(http.StatusInternalServerError, "ignored", err)

		var apiErr *APIError
		require.ErrorAs(t, got, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, string(domainerrors.CodeValidation), apiErr.Code)
		assert.Equal(t, "bad input", apiErr.Message)
		assert.Equal(t, map[string]string{"name": "is required"}, apiErr.Details)
	})

	t.Run("wrapped not found", func(t *testing.T) {
		got := huma.NewError(http.StatusInternalServerError, "boom", domainerrors.NotFoundf("book %d not found", 7))

		assert.Equal(t, http.StatusNotFound, got.GetStatus())
		assert.Equal(t, "book 7 not found", got.Error())
	})

	t.Run("store not found", func(t *testing.T) {
		got := huma.NewError(http.StatusInternalServerError, "boom", store.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, got.GetStatus())
	})

	t.Run("internal errors hide their cause", func(t *testing.T) {
		got := internalError(errors.New("disk on fire"))

		var apiErr *APIError
		require.ErrorAs(t, got, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
		assert.Equal(t, "internal error", apiErr.Message)
		assert.Nil(t, apiErr.Details)
	})

	t.Run("huma validation details", func(t *testing.T) {
		got := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Message: "expected number", Location: "query.limit", Value: "x"})

		var apiErr *APIError
		require.ErrorAs(t, got, &apiErr)
		assert.Equal(t, string(domainerrors.CodeValidation), apiErr.Code)
		assert.Len(t, apiErr.Details, 1)
	})
}
