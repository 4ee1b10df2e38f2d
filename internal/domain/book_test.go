package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBook_KeepsNameVerbatim(t *testing.T) {
	tests := []string{"Alice's Library", "", "  padded  ", "<script>alert(1)</script>"}

	for _, name := range tests {
		b := NewBook(name)
		assert.Equal(t, name, b.Name)
		assert.Zero(t, b.ID)
	}
}

func TestBook_Paths(t *testing.T) {
	b := &Book{ID: 42, Name: "Visitors"}

	assert.Equal(t, "/books/42", b.Path())
	assert.Equal(t, "/books/42/sign", b.SignPath())
}
