package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/movie-recommender/internal/ai"
	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/tmdb"
)

func TestBuildReport(t *testing.T) {
	suggestion := &ai.Suggestion{
		Query:     "space",
		Raw:       "1. Interstellar - wormholes",
		Unmatched: []string{"Solaris"},
		Analyzed:  50,
	}
	items := []catalog.Item{
		{ID: 157336, Title: "Interstellar", ReleaseDate: "2014-11-05", Genres: []string{"Drama"}, VoteAverage: 8.4},
		{ID: 1, Title: "Untitled"},
	}

	report := buildReport(suggestion, items, false, map[string]string{"Interstellar": "https://image.tmdb.org/t/p/w500/x.jpg"})

	if report.Query != "space" || report.Analyzed != 50 || report.Fallback || report.TopRated {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(report.Movies))
	}
	if report.Movies[0].Year != "2014" || report.Movies[0].Poster == "" {
		t.Fatalf("unexpected first movie: %+v", report.Movies[0])
	}
	if report.Movies[1].Poster != "" {
		t.Fatalf("expected no poster for the second movie")
	}

	if got := movieLabel(report.Movies[0]); got != "Interstellar (2014) / Drama" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := movieLabel(report.Movies[1]); got != "Untitled" {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	report := buildReport(&ai.Suggestion{Query: "heist"}, []catalog.Item{{ID: 949, Title: "Heat"}}, true, nil)

	filename, err := dumpToTmpFile(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(filename) })

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var decoded askReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding dump: %v", err)
	}
	if !decoded.TopRated || len(decoded.Movies) != 1 || decoded.Movies[0].Title != "Heat" {
		t.Fatalf("unexpected dump: %+v", decoded)
	}
}

func TestRedactedHidesInlineKeys(t *testing.T) {
	config := &Config{
		AI:   &AIConfig{Gemini: &GeminiConfig{APIKey: "gemini-secret", Model: "gemini-2.5-flash"}},
		TMDB: &TMDBConfig{APIKey: "tmdb-secret"},
	}

	data, err := json.Marshal(redacted(config))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(string(data), "secret") {
		t.Fatalf("secrets leaked: %s", data)
	}
	if config.AI.Gemini.APIKey != "gemini-secret" || config.TMDB.APIKey != "tmdb-secret" {
		t.Fatalf("original config must stay untouched")
	}
}

func TestNewAdvisorErrors(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")

	if _, err := newAdvisor(context.Background(), &AIConfig{Provider: "openai"}, nil, zap.NewNop()); err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}

	if _, err := newAdvisor(context.Background(), nil, nil, zap.NewNop()); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestPostersDisabled(t *testing.T) {
	items := []catalog.Item{{Title: "Heat"}}

	if got := posters(context.Background(), nil, items, zap.NewNop()); got != nil {
		t.Fatalf("expected no posters without config, got %v", got)
	}
	if got := posters(context.Background(), &TMDBConfig{Enabled: false}, items, zap.NewNop()); got != nil {
		t.Fatalf("expected no posters when disabled, got %v", got)
	}

	t.Setenv(tmdbKeyEnv, "")
	if got := posters(context.Background(), &TMDBConfig{Enabled: true}, items, zap.NewNop()); got != nil {
		t.Fatalf("expected no posters without api key, got %v", got)
	}
}

func fakePages(total int, requested *[]int) pageFetcher {
	return func(_ context.Context, n int) (*tmdb.Page, error) {
		*requested = append(*requested, n)
		if n > total {
			return nil, errors.New("page out of range")
		}
		return &tmdb.Page{
			Page:       n,
			TotalPages: total,
			Results: []*tmdb.Movie{
				{ID: n, Title: fmt.Sprintf("Movie %d", n), ReleaseDate: "2001-01-01", GenreIDs: []int{18}, PosterPath: "/p.jpg"},
			},
		}, nil
	}
}

func TestBrowsePagesFollowsHasMore(t *testing.T) {
	var requested []int
	out, err := browsePages(context.Background(), fakePages(3, &requested), 2, 5, "w185")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fmt.Sprint(requested) != "[2 3]" {
		t.Fatalf("expected to stop at the last page, requested %v", requested)
	}
	if out.FirstPage != 2 || out.LastPage != 3 || out.TotalPages != 3 || out.HasMore {
		t.Fatalf("unexpected paging: %+v", out)
	}
	if len(out.Movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(out.Movies))
	}

	first := out.Movies[0]
	if first.Title != "Movie 2" || first.Year != "2001" || first.Poster != "https://image.tmdb.org/t/p/w185/p.jpg" {
		t.Fatalf("unexpected movie: %+v", first)
	}
	if len(first.Genres) != 1 || first.Genres[0] != "Drama" {
		t.Fatalf("expected genre names, got %v", first.Genres)
	}
}

func TestBrowsePagesLimit(t *testing.T) {
	var requested []int
	out, err := browsePages(context.Background(), fakePages(10, &requested), 0, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(requested) != "[1]" || !out.HasMore {
		t.Fatalf("expected a single page with more to come, requested %v, out %+v", requested, out)
	}

	requested = nil
	if _, err := browsePages(context.Background(), fakePages(1, &requested), 2, 1, ""); err == nil {
		t.Fatalf("expected fetch error to be returned")
	}
}

type fakeDetailer struct {
	movie *tmdb.Movie
	err   error
	ids   []int
}

func (f *fakeDetailer) Movie(_ context.Context, id int) (*tmdb.Movie, error) {
	f.ids = append(f.ids, id)
	return f.movie, f.err
}

func TestMovieInfo(t *testing.T) {
	item := catalog.Item{ID: 603, Title: "The Matrix", VoteAverage: 8.2}

	out := movieInfo(context.Background(), item, nil, "", zap.NewNop())
	if out.Movie.Title != "The Matrix" || out.Movie.Poster != "" || out.Runtime != 0 {
		t.Fatalf("unexpected output without tmdb: %+v", out)
	}

	details := &fakeDetailer{movie: &tmdb.Movie{
		ID:          603,
		Title:       "The Matrix",
		Overview:    "A hacker learns the truth.",
		ReleaseDate: "1999-03-30",
		VoteAverage: 7.9,
		Genres:      []tmdb.Genre{{ID: 28, Name: "Action"}},
		PosterPath:  "/matrix.jpg",
		Runtime:     136,
		Tagline:     "Welcome to the Real World.",
	}}

	out = movieInfo(context.Background(), item, details, "w342", zap.NewNop())
	if len(details.ids) != 1 || details.ids[0] != 603 {
		t.Fatalf("expected details by catalog id, got %v", details.ids)
	}
	if out.Movie.Rating != 8.2 {
		t.Fatalf("catalog rating must win, got %v", out.Movie.Rating)
	}
	if out.Movie.Year != "1999" || out.Movie.Overview == "" || len(out.Movie.Genres) != 1 {
		t.Fatalf("expected blanks to be filled from tmdb: %+v", out.Movie)
	}
	if out.Movie.Poster != "https://image.tmdb.org/t/p/w342/matrix.jpg" || out.Runtime != 136 || out.Tagline == "" {
		t.Fatalf("unexpected details: %+v", out)
	}
}

func TestMovieInfoDetailsFailures(t *testing.T) {
	item := catalog.Item{ID: 1, Title: "Heat"}

	core, observed := observer.New(zapcore.InfoLevel)
	out := movieInfo(context.Background(), item, &fakeDetailer{err: fmt.Errorf("get: %w", tmdb.ErrNotFound)}, "", zap.New(core))
	if out.Movie.Title != "Heat" || out.Movie.Poster != "" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if observed.FilterMessage("movie is unknown to tmdb").Len() != 1 {
		t.Fatalf("expected not found to be logged")
	}

	out = movieInfo(context.Background(), item, &fakeDetailer{err: errors.New("boom")}, "", zap.New(core))
	if out.Movie.Title != "Heat" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if observed.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected failure to be logged as warning")
	}
}

func TestNewTMDBClientNeedsKey(t *testing.T) {
	t.Setenv(tmdbKeyEnv, "")
	if _, err := newTMDBClient(nil, zap.NewNop()); err == nil {
		t.Fatalf("expected missing key error")
	}

	t.Setenv(tmdbKeyEnv, "secret")
	if _, err := newTMDBClient(nil, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
