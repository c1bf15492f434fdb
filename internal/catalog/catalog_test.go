package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cratedig/internal/cache"
	"cratedig/internal/models"
	"cratedig/internal/services"
)

const genreTreePayload = `{
	"34": {
		"name": "Music",
		"subgenres": {
			"14": {"name": "Pop"},
			"7": {"name": "Electronic"},
			"18": {"name": "Hip-Hop/Rap"},
			"21": {"name": "Rock"}
		}
	}
}`

func genreTreeServer(t *testing.T, hits *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		assert.Equal(t, genreTreePath, r.URL.Path)
		assert.Equal(t, musicGenreRootID, r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(genreTreePayload))
	}))
}

func TestGenres_FetchesAndSortsTree(t *testing.T) {
	server := genreTreeServer(t, nil)
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	genres := catalog.Genres(context.Background())

	require.Len(t, genres, 4)
	assert.Equal(t, []models.Genre{
		{ID: 7, Name: "Electronic"},
		{ID: 14, Name: "Pop"},
		{ID: 18, Name: "Hip-Hop/Rap"},
		{ID: 21, Name: "Rock"},
	}, genres)
}

func TestGenres_SnapshotServesRepeatCalls(t *testing.T) {
	hits := 0
	server := genreTreeServer(t, &hits)
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	first := catalog.Genres(context.Background())
	second := catalog.Genres(context.Background())

	assert.Equal(t, 1, hits, "second call must come from the in-memory snapshot")
	assert.Equal(t, first, second)
}

func TestGenres_ReturnsCopies(t *testing.T) {
	server := genreTreeServer(t, nil)
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	first := catalog.Genres(context.Background())
	first[0].Name = "Mangled"

	second := catalog.Genres(context.Background())
	assert.Equal(t, "Electronic", second[0].Name)
}

func TestGenres_ServedFromCache(t *testing.T) {
	hits := 0
	server := genreTreeServer(t, &hits)
	defer server.Close()

	ctx := context.Background()
	c := cache.NewMemoryCache(16, time.Minute)
	seeded := []models.Genre{{ID: 14, Name: "Pop"}, {ID: 21, Name: "Rock"}}
	require.NoError(t, cache.SetJSON(ctx, c, genreTreeCacheKey, seeded, time.Minute))

	catalog := NewService(server.URL, c, 14)
	genres := catalog.Genres(ctx)

	assert.Equal(t, 0, hits, "cached tree must short-circuit the fetch")
	assert.Equal(t, seeded, genres)
}

func TestGenres_FetchPopulatesCache(t *testing.T) {
	server := genreTreeServer(t, nil)
	defer server.Close()

	ctx := context.Background()
	c := cache.NewMemoryCache(16, time.Minute)
	catalog := NewService(server.URL, c, 14)
	catalog.Genres(ctx)

	var cached []models.Genre
	require.True(t, cache.GetJSON(ctx, c, genreTreeCacheKey, &cached))
	assert.Len(t, cached, 4)
}

func TestGenres_EndpointDownServesStaticList(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	genres := catalog.Genres(context.Background())
	assert.Equal(t, staticGenres, genres)

	// The static fallback is not memoized, so the next call retries
	catalog.Genres(context.Background())
	assert.Equal(t, 2, hits)
}

func TestGenres_MalformedTreeServesStaticList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"34": "not a node"}`))
	}))
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	assert.Equal(t, staticGenres, catalog.Genres(context.Background()))
}

func TestGenres_MissingMusicBranchServesStaticList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"99": {"name": "Podcasts", "subgenres": {}}}`))
	}))
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	assert.Equal(t, staticGenres, catalog.Genres(context.Background()))
}

func TestResolve(t *testing.T) {
	server := genreTreeServer(t, nil)
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	ctx := context.Background()

	resolved := catalog.Resolve(ctx, []int{21, 14})
	assert.Equal(t, []models.Genre{
		{ID: 21, Name: "Rock"},
		{ID: 14, Name: "Pop"},
	}, resolved, "resolution keeps the requested order")

	// Unknown ids are dropped, not errored
	resolved = catalog.Resolve(ctx, []int{14, 9999})
	require.Len(t, resolved, 1)
	assert.Equal(t, 14, resolved[0].ID)

	assert.Empty(t, catalog.Resolve(ctx, nil))
	assert.Empty(t, catalog.Resolve(ctx, []int{}))
}

func TestDefaultGenre(t *testing.T) {
	server := genreTreeServer(t, nil)
	defer server.Close()

	catalog := NewService(server.URL, nil, 18)
	catalog.Genres(context.Background())
	assert.Equal(t, models.Genre{ID: 18, Name: "Hip-Hop/Rap"}, catalog.DefaultGenre())
}

func TestDefaultGenre_StaticListBeforeFirstFetch(t *testing.T) {
	catalog := NewService("http://unused.invalid", nil, 21)
	assert.Equal(t, models.Genre{ID: 21, Name: "Rock"}, catalog.DefaultGenre())
}

func TestDefaultGenre_UnknownIDFallsBackToPop(t *testing.T) {
	catalog := NewService("http://unused.invalid", nil, 424242)
	assert.Equal(t, models.Genre{ID: 424242, Name: "Pop"}, catalog.DefaultGenre())
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	payload := genreTreePayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	require.Len(t, catalog.Genres(context.Background()), 4)

	payload = `{"34": {"name": "Music", "subgenres": {"11": {"name": "Jazz"}}}}`
	require.NoError(t, catalog.Refresh(context.Background()))

	genres := catalog.Genres(context.Background())
	require.Len(t, genres, 1)
	assert.Equal(t, "Jazz", genres[0].Name)
}

func TestRefresh_SurfacesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	catalog := NewService(server.URL, nil, 14)
	err := catalog.Refresh(context.Background())
	require.Error(t, err)

	var sourceErr *services.SourceError
	assert.ErrorAs(t, err, &sourceErr)
	assert.Equal(t, "genre_tree", sourceErr.Operation)
}
