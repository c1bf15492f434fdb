package services

import (
	"context"

	"cratedig/internal/models"
)

// TrackSource defines the interface for music catalog integrations
type TrackSource interface {
	// Name returns the name of this source ("itunes", "spotify", ...)
	Name() string

	// TopTracksByGenre fetches popular tracks for a catalog genre
	TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]RawTrack, error)

	// SearchTracks searches the source catalog with a free-text query
	SearchTracks(ctx context.Context, query string, limit int) ([]RawTrack, error)

	// Health checks if the source is reachable
	Health(ctx context.Context) error
}

// RawTrack is a provider catalog record before normalization. Field names
// follow the iTunes Search API so its responses decode straight into this
// struct; other sources fill whichever aliases map onto their own payloads.
// The normalizer resolves each canonical field first-non-empty.
type RawTrack struct {
	// Identifier aliases
	TrackID int64  `json:"trackId,omitempty"`
	ID      string `json:"id,omitempty"`

	// Title aliases
	Title     string `json:"title,omitempty"`
	TrackName string `json:"trackName,omitempty"`
	Name      string `json:"name,omitempty"`

	// Artist aliases
	ArtistName string `json:"artistName,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Author     string `json:"author,omitempty"`

	// Album aliases
	CollectionName string `json:"collectionName,omitempty"`
	Album          string `json:"album,omitempty"`
	AlbumName      string `json:"albumName,omitempty"`

	// Artwork aliases
	ArtworkURL100 string `json:"artworkUrl100,omitempty"`
	ArtworkURL60  string `json:"artworkUrl60,omitempty"`
	ArtworkURL    string `json:"artworkUrl,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`

	// Preview aliases
	PreviewURL      string `json:"previewUrl,omitempty"`
	AudioPreviewURL string `json:"audioPreviewUrl,omitempty"`
	StreamURL       string `json:"streamUrl,omitempty"`

	// Store link aliases
	TrackViewURL string `json:"trackViewUrl,omitempty"`
	StoreURL     string `json:"storeUrl,omitempty"`
	URL          string `json:"url,omitempty"`

	// Genre aliases
	PrimaryGenreName string `json:"primaryGenreName,omitempty"`
	Genre            string `json:"genre,omitempty"`

	// Kind distinguishes songs from other iTunes result types
	Kind string `json:"kind,omitempty"`

	// Source is set by the provider that produced the record
	Source string `json:"-"`
}

// SourceError represents an error from a catalog source operation
type SourceError struct {
	Source    string
	Operation string
	Message   string
	URL       string
	Err       error
}

func (e *SourceError) Error() string {
	msg := e.Source + " " + e.Operation + " failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.URL != "" {
		msg += " (URL: " + e.URL + ")"
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
