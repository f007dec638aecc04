package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/ai"
	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/tmdb"
)

type reportMovie struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Year     string   `json:"year,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating"`
	Overview string   `json:"overview,omitempty"`
	Poster   string   `json:"poster,omitempty"`
}

type askReport struct {
	Query string `json:"query"`
	// Fallback is set when the titles named by the AI provider matched nothing and the movies come
	// from a text search instead.
	Fallback bool `json:"fallback"`
	// TopRated is set when even the text search found nothing.
	TopRated  bool          `json:"top_rated,omitempty"`
	Analyzed  int           `json:"total_analyzed"`
	Unmatched []string      `json:"unmatched_names,omitempty"`
	Repeated  []string      `json:"repeated_names,omitempty"`
	Movies    []reportMovie `json:"movies"`
	Response  string        `json:"ai_response,omitempty"`
}

func newReportMovie(item catalog.Item, poster string) reportMovie {
	return reportMovie{
		ID:       item.ID,
		Title:    item.Title,
		Year:     item.Year(),
		Genres:   item.Genres,
		Rating:   item.VoteAverage,
		Overview: item.Overview,
		Poster:   poster,
	}
}

func buildReport(suggestion *ai.Suggestion, items []catalog.Item, topRated bool, posters map[string]string) *askReport {
	report := &askReport{
		Query:     suggestion.Query,
		Fallback:  suggestion.Fallback,
		TopRated:  topRated,
		Analyzed:  suggestion.Analyzed,
		Unmatched: suggestion.Unmatched,
		Repeated:  suggestion.Repeated,
		Movies:    make([]reportMovie, 0, len(items)),
		Response:  suggestion.Raw,
	}

	for _, item := range items {
		report.Movies = append(report.Movies, newReportMovie(item, posters[item.Title]))
	}

	return report
}

// posters looks the movies up on TMDB and returns poster URLs by title. Enrichment is best effort:
// any failure is logged and leaves the report without posters.
func posters(ctx context.Context, cfg *TMDBConfig, items []catalog.Item, logger *zap.Logger) map[string]string {
	if cfg == nil || !cfg.Enabled || len(items) == 0 {
		return nil
	}

	client, err := newTMDBClient(cfg, logger)
	if err != nil {
		logger.Warn("skipping poster enrichment", zap.Error(err))
		return nil
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}

	found, err := tmdb.Enrich(ctx, client, logger, titles, cfg.Concurrency)
	if err != nil {
		logger.Warn("poster enrichment interrupted", zap.Error(err))
	}

	urls := make(map[string]string, len(found))
	for title, movie := range found {
		if url := tmdb.PosterURL(movie.PosterPath, cfg.PosterSize); url != "" {
			urls[title] = url
		}
	}

	logger.Debug("poster enrichment finished",
		zap.Int("requested", len(titles)),
		zap.Int("found", len(urls)),
		zap.String("breaker", client.BreakerState()),
	)

	return urls
}

func dumpToTmpFile(report *askReport) (string, error) {
	file, err := os.CreateTemp("", "movies_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func movieLabel(m reportMovie) string {
	var b strings.Builder
	b.WriteString(m.Title)
	if m.Year != "" {
		b.WriteString(" (" + m.Year + ")")
	}
	if len(m.Genres) > 0 {
		b.WriteString(" / " + strings.Join(m.Genres, ", "))
	}
	return b.String()
}
