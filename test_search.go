package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cratedig/internal/cache"
	"cratedig/internal/catalog"
	"cratedig/internal/feed"
	"cratedig/internal/models"
	"cratedig/internal/services"
)

// Manual smoke check against the live catalog APIs. Run with
// `go run test_search.go`; Spotify is only exercised when credentials
// are present in the environment.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	baseURL := os.Getenv("ITUNES_BASE_URL")
	if baseURL == "" {
		baseURL = "https://itunes.apple.com"
	}

	appCache := cache.NewMemoryCache(500, time.Hour)
	itunes := services.NewITunesService(baseURL, appCache)

	var spotify services.TrackSource
	if clientID, clientSecret := os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET"); clientID != "" && clientSecret != "" {
		spotify = services.NewSpotifyService(clientID, clientSecret, appCache)
	}

	ctx := context.Background()

	// Test search queries
	searches := []string{
		"Anti-Hero Taylor Swift",
		"Flowers Miley Cyrus",
		"Blinding Lights The Weeknd",
	}

	for _, query := range searches {
		fmt.Printf("\n=== Searching: %s ===\n", query)

		fmt.Println("\n🎵 iTunes Results:")
		printSearch(ctx, itunes, query)

		if spotify != nil {
			fmt.Println("\n🟢 Spotify Results:")
			printSearch(ctx, spotify, query)
		}

		fmt.Println("\n" + strings.Repeat("-", 60))
	}

	// Test the genre catalog
	fmt.Println("\n=== Genre Catalog ===")
	genreCatalog := catalog.NewService(baseURL, appCache, 14)
	genres := genreCatalog.Genres(ctx)
	fmt.Printf("Fetched %d genres\n", len(genres))
	for _, genre := range genres {
		fmt.Printf("  %d: %s\n", genre.ID, genre.Name)
	}

	// Test genre charts
	fmt.Println("\n=== Top Pop Tracks ===")
	raws, err := itunes.TopTracksByGenre(ctx, models.Genre{ID: 14, Name: "Pop"}, 5)
	if err != nil {
		fmt.Printf("Chart fetch error: %v\n", err)
		return
	}
	for i, track := range feed.NormalizeAll(raws) {
		fmt.Printf("%d. %s by %s (%s)\n", i+1, track.Title, track.Artist, track.StoreURL)
	}
}

func printSearch(ctx context.Context, source services.TrackSource, query string) {
	raws, err := source.SearchTracks(ctx, query, 3)
	if err != nil {
		fmt.Printf("%s search error: %v\n", source.Name(), err)
		return
	}
	for i, track := range feed.NormalizeAll(raws) {
		fmt.Printf("%d. %s by %s (%s)\n", i+1, track.Title, track.Artist, track.StoreURL)
	}
}
