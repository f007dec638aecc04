package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
)

type genresFilter struct {
	disabled bool
	reason   string
	genres   map[string]struct{}
	names    []string
}

// NewGenres creates a filter that removes movies of excluded genres.
func NewGenres() Filter {
	return &genresFilter{}
}

func (f *genresFilter) Name() string { return "genres" }

func (f *genresFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *genresFilter) IsEnabled() bool { return !f.disabled }

func (f *genresFilter) Validate(cfg *Config) error {
	f.genres = map[string]struct{}{}
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, genre := range cfg.ExcludeGenres {
		genre = strings.TrimSpace(genre)
		if genre == "" {
			continue
		}
		f.genres[strings.ToLower(genre)] = struct{}{}
		f.names = append(f.names, genre)
	}
	return nil
}

func (f *genresFilter) Apply(_ context.Context, deps Deps, items []catalog.Item) ([]catalog.Item, Step, error) {
	initial := len(items)
	if len(f.genres) == 0 {
		return items, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, removed := exclude(items, func(item catalog.Item) bool {
		for _, genre := range item.Genres {
			if _, ok := f.genres[strings.ToLower(strings.TrimSpace(genre))]; ok {
				return true
			}
		}
		return false
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding movies by genres",
			zap.Strings("excluded_genres", f.names),
			zap.Strings("excluded_movies", removed),
			zap.Int("movies_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: len(kept)}, nil
}

func (f *genresFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["genres"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
