package validation_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/guestbook/internal/errors"
	"github.com/listenupapp/guestbook/internal/validation"
)

type testSettings struct {
	Port    string        `env:"SERVER_PORT" validate:"required"`
	Backend string        `env:"STORE_BACKEND" validate:"oneof=badger sqlite postgres"`
	DSN     string        `env:"DATABASE_URL" validate:"required_if=Backend postgres"`
	Rate    float64       `json:"rate" validate:"gte=0"`
	Timeout time.Duration `validate:"gt=0"`
}

func validSettings() testSettings {
	return testSettings{Port: "8080", Backend: "badger", Timeout: time.Second}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(validSettings()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(*testSettings)
		wantField string
		wantMsg   string
	}{
		{"missing required", func(s *testSettings) { s.Port = "" }, "SERVER_PORT", "is required"},
		{"oneof", func(s *testSettings) { s.Backend = "mysql" }, "STORE_BACKEND", "must be one of: badger sqlite postgres"},
		{"required_if", func(s *testSettings) { s.Backend = "postgres" }, "DATABASE_URL", "is required"},
		{"json name wins", func(s *testSettings) { s.Rate = -1 }, "rate", "must be greater than or equal to 0"},
		{"go name fallback", func(s *testSettings) { s.Timeout = 0 }, "Timeout", "must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := v.Validate(s)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
			assert.Contains(t, err.Error(), tt.wantField+" "+tt.wantMsg)
		})
	}
}

func TestValidator_MultipleErrorsSorted(t *testing.T) {
	v := validation.New()

	s := validSettings()
	s.Port = ""
	s.Backend = "nope"

	err := v.Validate(s)
	require.Error(t, err)
	assert.Equal(t,
		"validation failed: SERVER_PORT is required; STORE_BACKEND must be one of: badger sqlite postgres",
		err.Error())
}
