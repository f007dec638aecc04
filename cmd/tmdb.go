package cmd

import (
	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/secrets"
	"github.com/spigell/movie-recommender/internal/tmdb"
)

const tmdbKeyEnv = "TMDB_API_KEY"

func newTMDBClient(cfg *TMDBConfig, logger *zap.Logger) (*tmdb.Client, error) {
	if cfg == nil {
		cfg = &TMDBConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "tmdb api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   tmdbKeyEnv,
	})
	if err != nil {
		return nil, err
	}

	return tmdb.New(logger.With(zap.String("client", "tmdb")), apiKey, cfg.Config), nil
}

func posterSize(cfg *TMDBConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.PosterSize
}

func tmdbReportMovie(m *tmdb.Movie, size string) reportMovie {
	return newReportMovie(m.Item(), tmdb.PosterURL(m.PosterPath, size))
}

// withDetails fills the blanks of a catalog item from TMDB details.
func withDetails(item catalog.Item, details *tmdb.Movie) catalog.Item {
	fromTMDB := details.Item()
	if item.Overview == "" {
		item.Overview = fromTMDB.Overview
	}
	if len(item.Genres) == 0 {
		item.Genres = fromTMDB.Genres
	}
	if item.ReleaseDate == "" {
		item.ReleaseDate = fromTMDB.ReleaseDate
	}
	if item.VoteAverage == 0 {
		item.VoteAverage = fromTMDB.VoteAverage
	}
	return item
}
