package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
)

const maxRating = 10

type minRatingFilter struct {
	disabled  bool
	reason    string
	minRating float64
	minVotes  int
}

// NewMinRating creates a filter that removes movies rated below the configured thresholds.
func NewMinRating() Filter {
	return &minRatingFilter{}
}

func (f *minRatingFilter) Name() string { return "min_rating" }

func (f *minRatingFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minRatingFilter) IsEnabled() bool { return !f.disabled }

func (f *minRatingFilter) Validate(cfg *Config) error {
	f.minRating, f.minVotes = 0, 0
	if cfg == nil {
		return nil
	}
	if cfg.MinRating < 0 || cfg.MinRating > maxRating {
		return fmt.Errorf("minimum rating must be between 0 and %d, got %v", maxRating, cfg.MinRating)
	}
	if cfg.MinVotes < 0 {
		return fmt.Errorf("minimum votes must not be negative, got %d", cfg.MinVotes)
	}
	f.minRating, f.minVotes = cfg.MinRating, cfg.MinVotes
	return nil
}

func (f *minRatingFilter) Apply(_ context.Context, deps Deps, items []catalog.Item) ([]catalog.Item, Step, error) {
	initial := len(items)
	if f.minRating == 0 && f.minVotes == 0 {
		return items, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, removed := exclude(items, func(item catalog.Item) bool {
		return item.VoteAverage < f.minRating || item.VoteCount < f.minVotes
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding movies by rating",
			zap.Float64("min_rating", f.minRating),
			zap.Int("min_votes", f.minVotes),
			zap.Strings("excluded_movies", removed),
			zap.Int("movies_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: len(kept)}, nil
}

func (f *minRatingFilter) Status() Status {
	details := map[string]string{
		"min_rating": strconv.FormatFloat(f.minRating, 'f', 1, 64),
		"min_votes":  strconv.Itoa(f.minVotes),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
