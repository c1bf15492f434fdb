package testutil

import (
	"fmt"
	"time"

	"cratedig/internal/models"
	"cratedig/internal/services"
)

// TrackBuilder provides a fluent interface for creating test tracks
type TrackBuilder struct {
	track models.Track
}

// NewTrackBuilder creates a new track builder with default values
func NewTrackBuilder() *TrackBuilder {
	return &TrackBuilder{
		track: models.Track{
			ID:         "1440857781",
			Title:      "Test Track",
			Artist:     "Test Artist",
			Album:      "Test Album",
			ArtworkURL: "https://example.com/art/600x600bb.jpg",
			PreviewURL: "https://example.com/preview.m4a",
			StoreURL:   "https://music.example.com/track/1440857781",
			Genre:      "Pop",
			Source:     "itunes",
		},
	}
}

// WithID sets the track ID
func (b *TrackBuilder) WithID(id string) *TrackBuilder {
	b.track.ID = id
	return b
}

// WithTitle sets the track title
func (b *TrackBuilder) WithTitle(title string) *TrackBuilder {
	b.track.Title = title
	return b
}

// WithArtist sets the track artist
func (b *TrackBuilder) WithArtist(artist string) *TrackBuilder {
	b.track.Artist = artist
	return b
}

// WithAlbum sets the track album
func (b *TrackBuilder) WithAlbum(album string) *TrackBuilder {
	b.track.Album = album
	return b
}

// WithGenre sets the genre name
func (b *TrackBuilder) WithGenre(genre string) *TrackBuilder {
	b.track.Genre = genre
	return b
}

// WithSource sets the originating source
func (b *TrackBuilder) WithSource(source string) *TrackBuilder {
	b.track.Source = source
	return b
}

// WithPreviewURL sets the preview clip URL
func (b *TrackBuilder) WithPreviewURL(url string) *TrackBuilder {
	b.track.PreviewURL = url
	return b
}

// WithStoreURL sets the store page URL
func (b *TrackBuilder) WithStoreURL(url string) *TrackBuilder {
	b.track.StoreURL = url
	return b
}

// Build returns the constructed track
func (b *TrackBuilder) Build() models.Track {
	return b.track
}

// RawTrackBuilder provides a fluent interface for provider catalog records
type RawTrackBuilder struct {
	raw services.RawTrack
}

// NewRawTrackBuilder creates a raw track builder shaped like an iTunes
// Search API result
func NewRawTrackBuilder() *RawTrackBuilder {
	return &RawTrackBuilder{
		raw: services.RawTrack{
			TrackID:          1440857781,
			TrackName:        "Test Track",
			ArtistName:       "Test Artist",
			CollectionName:   "Test Album",
			ArtworkURL100:    "https://example.com/art/100x100bb.jpg",
			PreviewURL:       "https://example.com/preview.m4a",
			TrackViewURL:     "https://music.example.com/track/1440857781",
			PrimaryGenreName: "Pop",
			Kind:             "song",
			Source:           "itunes",
		},
	}
}

// WithTrackID sets the numeric iTunes identifier
func (b *RawTrackBuilder) WithTrackID(id int64) *RawTrackBuilder {
	b.raw.TrackID = id
	return b
}

// WithName sets the track name
func (b *RawTrackBuilder) WithName(name string) *RawTrackBuilder {
	b.raw.TrackName = name
	return b
}

// WithArtist sets the artist name
func (b *RawTrackBuilder) WithArtist(artist string) *RawTrackBuilder {
	b.raw.ArtistName = artist
	return b
}

// WithGenre sets the genre name
func (b *RawTrackBuilder) WithGenre(genre string) *RawTrackBuilder {
	b.raw.PrimaryGenreName = genre
	return b
}

// WithKind sets the iTunes result kind
func (b *RawTrackBuilder) WithKind(kind string) *RawTrackBuilder {
	b.raw.Kind = kind
	return b
}

// WithSource sets the originating source
func (b *RawTrackBuilder) WithSource(source string) *RawTrackBuilder {
	b.raw.Source = source
	return b
}

// Build returns the constructed raw track
func (b *RawTrackBuilder) Build() services.RawTrack {
	return b.raw
}

// Common test data
var (
	// Sample listener IDs
	TestUserID1 = "listener-001"
	TestUserID2 = "listener-002"

	// Sample iTunes track IDs
	ITunesTrackID1 = "1440857781"
	ITunesTrackID2 = "1440857782"

	// Sample Spotify track IDs
	SpotifyTrackID1 = "4iV5W9uYEdYUVa79Axb7Rh"
	SpotifyTrackID2 = "1YLJVMUFYjwdAF4lDPqH7G"

	// Genre IDs from the iTunes genre tree
	GenreIDPop        = 14
	GenreIDHipHopRap  = 18
	GenreIDElectronic = 7
)

// CreateTestTracks builds count distinct tracks cycling through the given
// artists. With no artists every track gets its own.
func CreateTestTracks(count int, artists ...string) []models.Track {
	tracks := make([]models.Track, 0, count)
	for i := 0; i < count; i++ {
		artist := fmt.Sprintf("Artist %d", i)
		if len(artists) > 0 {
			artist = artists[i%len(artists)]
		}
		tracks = append(tracks, NewTrackBuilder().
			WithID(fmt.Sprintf("track-%03d", i)).
			WithTitle(fmt.Sprintf("Track %d", i)).
			WithArtist(artist).
			Build())
	}
	return tracks
}

// CreateTestRawTracks builds count distinct iTunes-shaped records cycling
// through the given artists
func CreateTestRawTracks(count int, artists ...string) []services.RawTrack {
	raws := make([]services.RawTrack, 0, count)
	for i := 0; i < count; i++ {
		artist := fmt.Sprintf("Artist %d", i)
		if len(artists) > 0 {
			artist = artists[i%len(artists)]
		}
		raws = append(raws, NewRawTrackBuilder().
			WithTrackID(int64(9000000+i)).
			WithName(fmt.Sprintf("Track %d", i)).
			WithArtist(artist).
			Build())
	}
	return raws
}

// CreatePreferenceState builds a snapshot with a few gestures applied
func CreatePreferenceState(userID string) *models.PreferenceState {
	state := models.NewPreferenceState(userID)
	state.AddLike(ITunesTrackID1, "Test Artist", time.Now())
	state.AddDislike(ITunesTrackID2, "Disliked Artist", time.Now())
	return state
}
