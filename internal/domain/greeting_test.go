package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewGreeting(t *testing.T) {
	book := &Book{ID: 7, Name: "Guests"}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	g := NewGreeting(book, "Hello!", at)

	assert.Equal(t, int64(7), g.BookID)
	assert.Equal(t, "Hello!", g.Content)
	assert.True(t, g.Date.Equal(at))
	assert.Equal(t, time.UTC, g.Date.Location())
	assert.Zero(t, g.ID)
}
