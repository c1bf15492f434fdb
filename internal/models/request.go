package models

import "time"

// FeedRequest describes one feed composition pass
type FeedRequest struct {
	// Seed drives every random decision in the pass. The same seed with
	// the same catalog responses reproduces the same feed.
	Seed uint32

	// GenreIDs narrows fetching to specific catalog genres. Empty means
	// the default genre.
	GenreIDs []int

	// TargetSize is the number of tracks the caller wants back
	TargetSize int

	// CooldownWindow suppresses tracks the listener liked or played this
	// recently. Zero disables the cooldown stage.
	CooldownWindow time.Duration
}
