package tmdb

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pageJSON = `{
  "page": 1,
  "total_pages": 3,
  "total_results": 42,
  "results": [
    {"id": 27205, "title": "Inception", "release_date": "2010-07-15", "vote_average": 8.4, "vote_count": 35000, "popularity": 83.9, "poster_path": "/inception.jpg", "genre_ids": [28, 878, 1]},
    {"id": 157336, "title": "Interstellar", "release_date": "2014-11-05", "vote_average": 8.4, "poster_path": null, "genre_ids": []}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(zap.NewNop(), "secret", Config{RequestsPerSecond: 1000, FailureThreshold: 2, OpenTimeout: time.Minute})
	c.APIURL = srv.URL
	return c
}

func TestSearchMovies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "inception", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, pageJSON)
	})

	page, err := c.SearchMovies(context.Background(), " inception ", 2)
	require.NoError(t, err)

	assert.Equal(t, 42, page.TotalResults)
	assert.True(t, page.HasMore())
	require.Len(t, page.Results, 2)

	first := page.Results[0]
	assert.Equal(t, 27205, first.ID)
	assert.Equal(t, 35000, first.VoteCount)
	assert.Equal(t, []string{"Action", "Science Fiction", "Genre-1"}, first.GenreNames())
	assert.Equal(t, "", page.Results[1].PosterPath)

	item := first.Item()
	assert.Equal(t, "Inception", item.Title)
	assert.Equal(t, "2010", item.Year())
}

func TestSearchMoviesRejectsEmptyQuery(t *testing.T) {
	c := New(zap.NewNop(), "secret", Config{})
	_, err := c.SearchMovies(context.Background(), "  ", 1)
	require.Error(t, err)
}

func TestListEndpoints(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		fmt.Fprint(w, pageJSON)
	})

	ctx := context.Background()
	_, err := c.Popular(ctx, 0)
	require.NoError(t, err)
	_, err = c.TopRated(ctx, 1)
	require.NoError(t, err)
	_, err = c.Trending(ctx, "", 1)
	require.NoError(t, err)
	_, err = c.Trending(ctx, "day", 1)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{popularPath, topRatedPath, "/trending/movie/week", "/trending/movie/day"}, paths)

	_, err = c.Trending(ctx, "month", 1)
	require.Error(t, err)
}

func TestListByName(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path+"?page="+r.URL.Query().Get("page"))
		mu.Unlock()
		fmt.Fprint(w, pageJSON)
	})

	ctx := context.Background()
	for _, tt := range []struct {
		name, window string
		page         int
	}{
		{name: ListPopular, page: 2},
		{name: ListTopRated, window: "day", page: 1},
		{name: ListTrending, window: "day", page: 3},
	} {
		page, err := c.List(ctx, tt.name, tt.window, tt.page)
		require.NoError(t, err)
		assert.Len(t, page.Results, 2)
	}

	_, err := c.List(ctx, "upcoming", "", 1)
	require.ErrorContains(t, err, "unknown movie list")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{popularPath + "?page=2", topRatedPath + "?page=1", "/trending/movie/day?page=3"}, paths)
}

func TestMovieDetailsGzip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		fmt.Fprint(gz, `{"id": 603, "title": "The Matrix", "runtime": 136, "genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]}`)
	})

	movie, err := c.Movie(context.Background(), 603)
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, 136, movie.Runtime)
	assert.Equal(t, []string{"Action", "Science Fiction"}, movie.GenreNames())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"status_code":34}`, http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		_, err := c.Movie(context.Background(), 1)
		require.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "closed", c.BreakerState())
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		_, err := c.Popular(context.Background(), 1)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	}

	_, err := c.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "open", c.BreakerState())
}

func TestMissingAPIKey(t *testing.T) {
	c := New(nil, "", Config{})
	_, err := c.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "api key"))
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", PosterURL("/a.jpg", ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/a.jpg", PosterURL("a.jpg", "original"))
	assert.Equal(t, "", PosterURL("", "w500"))
}

func TestYear(t *testing.T) {
	assert.Equal(t, "1999", Year("1999-03-30"))
	assert.Equal(t, "", Year(""))
	assert.Equal(t, "99", Year("99"))
}

type fakeSearcher struct {
	results map[string][]*Movie
	fail    map[string]bool
	calls   atomic.Int32
}

func (f *fakeSearcher) SearchMovies(ctx context.Context, query string, page int) (*Page, error) {
	f.calls.Add(1)
	if f.fail[query] {
		return nil, errors.New("boom")
	}
	return &Page{Page: 1, Results: f.results[query]}, nil
}

func TestEnrich(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]*Movie{
			"Heat":  {{ID: 949, Title: "Heat"}, {ID: 1, Title: "Heat 2"}},
			"Alien": {{ID: 348, Title: "Alien"}},
		},
		fail: map[string]bool{"Broken": true},
	}

	found, err := Enrich(context.Background(), s, zap.NewNop(), []string{"Heat", "Alien", "Broken", "Unknown"}, 2)
	require.NoError(t, err)

	assert.Len(t, found, 2)
	assert.Equal(t, 949, found["Heat"].ID)
	assert.Equal(t, 348, found["Alien"].ID)
	assert.Equal(t, int32(4), s.calls.Load())
}

func TestEnrichCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSearcher{fail: map[string]bool{"Heat": true}}
	_, err := Enrich(ctx, s, nil, []string{"Heat"}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHealthy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no error", want: true},
		{name: "not found", err: &StatusError{Code: http.StatusNotFound}, want: true},
		{name: "rate limited", err: &StatusError{Code: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &StatusError{Code: http.StatusBadGateway}},
		{name: "cancelled by caller", err: fmt.Errorf("get: %w", context.Canceled), want: true},
		{name: "deadline", err: context.DeadlineExceeded},
		{name: "network", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthy(tt.err))
		})
	}
}

func TestCancelledRequestsDoNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := c.Popular(ctx, 1)
		require.ErrorIs(t, err, context.Canceled)
		cancel()
	}

	assert.Equal(t, "closed", c.BreakerState())
}
