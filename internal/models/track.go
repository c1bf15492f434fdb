package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Track is the canonical feed item assembled from provider catalog records
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	StoreURL   string `json:"store_url,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Source     string `json:"source,omitempty"` // "itunes", "spotify", etc.
}

// HasPreview reports whether the track carries a playable preview clip
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// HasStoreLink reports whether the track links back to a store page
func (t Track) HasStoreLink() bool {
	return t.StoreURL != ""
}

// ArtistKey returns the canonical identity used when comparing artists.
// Unicode compatibility forms are folded first so "Ｑｕｅｅｎ" and "Queen"
// collapse to the same key, then case and surrounding/internal whitespace
// are normalized.
func ArtistKey(name string) string {
	folded := norm.NFKC.String(name)
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.Fields(folded), " ")
}

// Genre identifies a catalog genre bucket tracks are fetched from
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
