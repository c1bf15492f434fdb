package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/models"
)

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Title: "First"},
		{ID: "2", Title: "Second"},
		{ID: "1", Title: "First Again"},
		{ID: "3", Title: "Third"},
		{ID: "2", Title: "Second Again"},
	}

	out := Dedupe(tracks)
	require.Len(t, out, 3)
	assert.Equal(t, "First", out[0].Title)
	assert.Equal(t, "Second", out[1].Title)
	assert.Equal(t, "Third", out[2].Title)
}

func TestDedupe_Idempotent(t *testing.T) {
	tracks := []models.Track{
		{ID: "1"}, {ID: "2"}, {ID: "1"}, {ID: "3"},
	}

	once := Dedupe(tracks)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.Empty(t, Dedupe([]models.Track{}))
}
