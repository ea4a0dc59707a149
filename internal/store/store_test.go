package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/weekgrid/internal/store"
)

func TestMemory_RoundTrip(t *testing.T) {
	s := store.NewMemory()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, s.Set("k", "v"))
	v, err := s.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", v)

	assert.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete("k"))
}
