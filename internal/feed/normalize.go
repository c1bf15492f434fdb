package feed

import (
	"regexp"
	"strconv"
	"strings"

	"cratedig/internal/models"
	"cratedig/internal/services"
)

const (
	unknownTitle  = "Unknown title"
	unknownArtist = "Unknown artist"

	// Square size artwork tokens are rewritten to. Catalog APIs hand out
	// thumbnail URLs (100x100 and smaller); the same CDN path serves the
	// larger rendition.
	artworkSize = "600x600"
)

var (
	artworkExtPattern   = regexp.MustCompile(`(\d+)x(\d+)(\.(?:jpg|jpeg|png|webp|gif))`)
	artworkLoosePattern = regexp.MustCompile(`(\d+)x(\d+)`)
)

// Normalize resolves a provider record into a canonical Track. Each field
// is taken from the first non-empty alias for it. The second return is
// false when the record carries neither a title nor an artist; those rows
// are catalog junk and are skipped rather than surfaced.
func Normalize(raw services.RawTrack) (models.Track, bool) {
	title := firstNonEmpty(raw.Title, raw.TrackName, raw.Name)
	artist := firstNonEmpty(raw.ArtistName, raw.Artist, raw.Author)
	if title == "" && artist == "" {
		return models.Track{}, false
	}

	album := firstNonEmpty(raw.CollectionName, raw.Album, raw.AlbumName)
	if title == "" {
		title = unknownTitle
	}
	if artist == "" {
		artist = unknownArtist
	}

	track := models.Track{
		ID:         resolveID(raw, artist, title, album),
		Title:      title,
		Artist:     artist,
		Album:      album,
		ArtworkURL: upscaleArtwork(firstNonEmpty(raw.ArtworkURL100, raw.ArtworkURL60, raw.ArtworkURL, raw.ImageURL)),
		PreviewURL: firstNonEmpty(raw.PreviewURL, raw.AudioPreviewURL, raw.StreamURL),
		StoreURL:   firstNonEmpty(raw.TrackViewURL, raw.StoreURL, raw.URL),
		Genre:      firstNonEmpty(raw.PrimaryGenreName, raw.Genre),
		Source:     raw.Source,
	}
	return track, true
}

// NormalizeAll normalizes a batch, dropping records that fail
func NormalizeAll(raws []services.RawTrack) []models.Track {
	tracks := make([]models.Track, 0, len(raws))
	for _, raw := range raws {
		if track, ok := Normalize(raw); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// resolveID prefers the source's native identifier. Records without one
// get a composite key from their resolved fields, which stays stable
// across repeated normalization of the same input.
func resolveID(raw services.RawTrack, artist, title, album string) string {
	if raw.TrackID != 0 {
		return strconv.FormatInt(raw.TrackID, 10)
	}
	if raw.ID != "" {
		return raw.ID
	}
	return artist + "|" + title + "|" + album
}

// upscaleArtwork rewrites a square WxW dimension token in the artwork URL
// to artworkSize. A token right before the file extension is preferred;
// otherwise the first square token anywhere in the URL is used. URLs
// without such a token pass through untouched.
func upscaleArtwork(url string) string {
	if url == "" {
		return url
	}

	replaced := false
	out := artworkExtPattern.ReplaceAllStringFunc(url, func(match string) string {
		sub := artworkExtPattern.FindStringSubmatch(match)
		if sub[1] != sub[2] {
			return match
		}
		replaced = true
		return artworkSize + sub[3]
	})
	if replaced {
		return out
	}

	out = artworkLoosePattern.ReplaceAllStringFunc(url, func(match string) string {
		sub := artworkLoosePattern.FindStringSubmatch(match)
		if sub[1] != sub[2] {
			return match
		}
		replaced = true
		return artworkSize
	})
	if replaced {
		return out
	}
	return url
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
