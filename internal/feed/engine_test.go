package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/models"
	"cratedig/internal/services"
)

// stubSource serves canned catalog responses keyed by genre id
type stubSource struct {
	mu         sync.Mutex
	name       string
	byGenre    map[int][]services.RawTrack
	searchRaws []services.RawTrack
	errOn      map[int]error
	searchErr  error
	genreCalls []int
}

func (s *stubSource) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubSource) TopTracksByGenre(ctx context.Context, genre models.Genre, limit int) ([]services.RawTrack, error) {
	s.mu.Lock()
	s.genreCalls = append(s.genreCalls, genre.ID)
	s.mu.Unlock()

	if err, ok := s.errOn[genre.ID]; ok {
		return nil, err
	}
	return s.byGenre[genre.ID], nil
}

func (s *stubSource) SearchTracks(ctx context.Context, query string, limit int) ([]services.RawTrack, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchRaws, nil
}

func (s *stubSource) Health(ctx context.Context) error {
	return nil
}

func (s *stubSource) calledGenres() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.genreCalls...)
}

// stubCatalog resolves against a fixed genre list
type stubCatalog struct {
	genres       []models.Genre
	defaultGenre models.Genre
}

func (c *stubCatalog) Genres(ctx context.Context) []models.Genre {
	return c.genres
}

func (c *stubCatalog) Resolve(ctx context.Context, ids []int) []models.Genre {
	out := []models.Genre{}
	for _, id := range ids {
		for _, g := range c.genres {
			if g.ID == id {
				out = append(out, g)
			}
		}
	}
	return out
}

func (c *stubCatalog) DefaultGenre() models.Genre {
	return c.defaultGenre
}

func (c *stubCatalog) Refresh(ctx context.Context) error {
	return nil
}

func genreRaws(start int64, genre string, artists ...string) []services.RawTrack {
	raws := make([]services.RawTrack, len(artists))
	for i, artist := range artists {
		raws[i] = services.RawTrack{
			TrackID:          start + int64(i),
			TrackName:        fmt.Sprintf("Song %d", start+int64(i)),
			ArtistName:       artist,
			PrimaryGenreName: genre,
		}
	}
	return raws
}

func discoveryEngine(source *stubSource) *Engine {
	cat := &stubCatalog{
		genres: []models.Genre{
			{ID: 14, Name: "Pop"},
			{ID: 21, Name: "Rock"},
		},
		defaultGenre: models.Genre{ID: 14, Name: "Pop"},
	}
	return NewEngine(source, []services.TrackSource{source}, cat)
}

func TestBuildDiscoveryFeed_InvalidTargetSize(t *testing.T) {
	engine := discoveryEngine(&stubSource{})

	_, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{TargetSize: 0}, nil)
	require.Error(t, err)

	var reqErr *InvalidRequestError
	assert.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "target_size", reqErr.Field)
}

func TestBuildDiscoveryFeed_Deterministic(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop", "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10"),
	}}
	engine := discoveryEngine(source)
	req := models.FeedRequest{Seed: 4242, GenreIDs: []int{14}, TargetSize: 8}

	first, err := engine.BuildDiscoveryFeed(context.Background(), req, nil)
	require.NoError(t, err)
	second, err := engine.BuildDiscoveryFeed(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestBuildDiscoveryFeed_SeedChangesOrder(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop",
			"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10",
			"P11", "P12", "P13", "P14", "P15", "P16", "P17", "P18", "P19", "P20"),
	}}
	engine := discoveryEngine(source)

	a, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 1, GenreIDs: []int{14}, TargetSize: 20}, nil)
	require.NoError(t, err)
	b, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 2, GenreIDs: []int{14}, TargetSize: 20}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, a, b)
	assert.NotEqual(t, a, b)
}

func TestBuildDiscoveryFeed_RespectsArtistCap(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop", "A", "A", "A", "A", "B", "B", "B", "C", "C", "D"),
	}}
	engine := discoveryEngine(source)

	out, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 7, GenreIDs: []int{14}, TargetSize: 10}, nil)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, track := range out {
		counts[track.Artist]++
	}
	for artist, n := range counts {
		assert.LessOrEqual(t, n, 2, "artist %s over cap", artist)
	}
}

func TestBuildDiscoveryFeed_MergesRequestedGenres(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop", "P1", "P2", "P3", "P4", "P5", "P6"),
		21: genreRaws(200, "Rock", "R1", "R2", "R3", "R4", "R5", "R6"),
	}}
	engine := discoveryEngine(source)

	out, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 9, GenreIDs: []int{14, 21}, TargetSize: 10}, nil)
	require.NoError(t, err)
	require.Len(t, out, 10)

	genres := map[string]bool{}
	for _, track := range out {
		genres[track.Genre] = true
	}
	assert.True(t, genres["Pop"], "expected pop tracks in merged feed")
	assert.True(t, genres["Rock"], "expected rock tracks in merged feed")
}

func TestBuildDiscoveryFeed_FailedGenreFallsBackToDefault(t *testing.T) {
	source := &stubSource{
		byGenre: map[int][]services.RawTrack{
			14: genreRaws(100, "Pop", "P1", "P2", "P3", "P4", "P5", "P6"),
		},
		errOn: map[int]error{
			21: errors.New("upstream exploded"),
		},
	}
	engine := discoveryEngine(source)

	out, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 5, GenreIDs: []int{21}, TargetSize: 5}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	calls := source.calledGenres()
	assert.Equal(t, []int{21, 14}, calls, "failed genre then default genre")
}

func TestBuildDiscoveryFeed_EmptyEverywhere(t *testing.T) {
	engine := discoveryEngine(&stubSource{})

	out, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 5, GenreIDs: []int{14}, TargetSize: 5}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBuildDiscoveryFeed_RemovesDislikedTracks(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop", "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10"),
	}}
	engine := discoveryEngine(source)

	prefs := models.NewPreferenceState("u1")
	prefs.DislikedTrackIDs["100"] = true
	prefs.DislikedTrackIDs["101"] = true

	out, err := engine.BuildDiscoveryFeed(context.Background(), models.FeedRequest{Seed: 11, GenreIDs: []int{14}, TargetSize: 10}, prefs)
	require.NoError(t, err)

	ids := idsOf(out)
	assert.NotContains(t, ids, "100")
	assert.NotContains(t, ids, "101")
	assert.Len(t, out, 8)
}

func TestExtendFeed_AppendOnly(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop",
			"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10", "P11", "P12"),
	}}
	engine := discoveryEngine(source)
	req := models.FeedRequest{Seed: 33, GenreIDs: []int{14}, TargetSize: 5}

	feed, err := engine.BuildDiscoveryFeed(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, feed, 5)

	extended, err := engine.ExtendFeed(context.Background(), feed, req, nil)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(extended), len(feed))
	assert.Equal(t, feed, extended[:len(feed)], "existing feed must stay untouched")

	seen := map[string]bool{}
	for _, track := range extended {
		assert.False(t, seen[track.ID], "duplicate track %s after extension", track.ID)
		seen[track.ID] = true
	}
}

func TestExtendFeed_EmptyExistingMatchesFirstPage(t *testing.T) {
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(100, "Pop", "P1", "P2", "P3", "P4", "P5", "P6"),
	}}
	engine := discoveryEngine(source)
	req := models.FeedRequest{Seed: 33, GenreIDs: []int{14}, TargetSize: 4}

	firstPage, err := engine.BuildDiscoveryFeed(context.Background(), req, nil)
	require.NoError(t, err)

	extended, err := engine.ExtendFeed(context.Background(), nil, req, nil)
	require.NoError(t, err)
	assert.Equal(t, firstPage, extended)
}

func TestBuildSearchResults_RanksExactArtistFirst(t *testing.T) {
	source := &stubSource{searchRaws: []services.RawTrack{
		{TrackID: 1, TrackName: "Forever", ArtistName: "Drizzy Drake"},
		{TrackID: 2, TrackName: "One Dance", ArtistName: "Drake"},
		{TrackID: 3, TrackName: "Found a Way", ArtistName: "Drake Bell"},
	}}
	engine := discoveryEngine(source)

	out, err := engine.BuildSearchResults(context.Background(), "Drake", nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "Drake", out[0].Artist)
}

func TestBuildSearchResults_MergesSourcesAndDedupes(t *testing.T) {
	s1 := &stubSource{name: "itunes", searchRaws: []services.RawTrack{
		{TrackID: 1, TrackName: "Song A", ArtistName: "X"},
		{TrackID: 2, TrackName: "Song B", ArtistName: "Y"},
	}}
	s2 := &stubSource{name: "spotify", searchRaws: []services.RawTrack{
		{TrackID: 2, TrackName: "Song B", ArtistName: "Y"},
		{TrackID: 3, TrackName: "Song C", ArtistName: "Z"},
	}}
	cat := &stubCatalog{defaultGenre: models.Genre{ID: 14, Name: "Pop"}}
	engine := NewEngine(s1, []services.TrackSource{s1, s2}, cat)

	out, err := engine.BuildSearchResults(context.Background(), "Song", nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestBuildSearchResults_SourceFailureDegrades(t *testing.T) {
	s1 := &stubSource{name: "itunes", searchErr: errors.New("down")}
	s2 := &stubSource{name: "spotify", searchRaws: []services.RawTrack{
		{TrackID: 10, TrackName: "Still Here", ArtistName: "Survivor"},
	}}
	cat := &stubCatalog{defaultGenre: models.Genre{ID: 14, Name: "Pop"}}
	engine := NewEngine(s1, []services.TrackSource{s1, s2}, cat)

	out, err := engine.BuildSearchResults(context.Background(), "here", nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Survivor", out[0].Artist)
}

func TestBuildSearchResults_EmptyQuery(t *testing.T) {
	engine := discoveryEngine(&stubSource{})

	out, err := engine.BuildSearchResults(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBuildSearchResults_DislikedFloorKeepsSmallPools(t *testing.T) {
	source := &stubSource{searchRaws: []services.RawTrack{
		{TrackID: 1, TrackName: "One", ArtistName: "A"},
		{TrackID: 2, TrackName: "Two", ArtistName: "B"},
		{TrackID: 3, TrackName: "Three", ArtistName: "C"},
	}}
	engine := discoveryEngine(source)

	prefs := models.NewPreferenceState("u1")
	prefs.DislikedTrackIDs["1"] = true

	// Removing the disliked track would leave 2, under the floor of 5,
	// so it stays in the results
	out, err := engine.BuildSearchResults(context.Background(), "o", prefs)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func BenchmarkBuildDiscoveryFeed(b *testing.B) {
	artists := make([]string, 40)
	for i := range artists {
		artists[i] = fmt.Sprintf("Artist %d", i%15)
	}
	source := &stubSource{byGenre: map[int][]services.RawTrack{
		14: genreRaws(1000, "Pop", artists...),
	}}
	engine := discoveryEngine(source)
	req := models.FeedRequest{Seed: 77, GenreIDs: []int{14}, TargetSize: 25}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.BuildDiscoveryFeed(context.Background(), req, nil); err != nil {
			b.Fatal(err)
		}
	}
}
