package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
)

type seenFilter struct {
	disabled bool
	reason   string
	path     string
}

// NewSeen creates a filter that removes movies listed in the seen-file.
func NewSeen() Filter {
	return &seenFilter{}
}

func (f *seenFilter) Name() string { return "seen" }

func (f *seenFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *seenFilter) IsEnabled() bool { return !f.disabled }

func (f *seenFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.SeenFile)
	}
	return nil
}

func (f *seenFilter) Apply(_ context.Context, deps Deps, items []catalog.Item) ([]catalog.Item, Step, error) {
	initial := len(items)
	if f.path == "" {
		return items, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	seen, err := GetSeenMoviesFromFile(f.path)
	if err != nil {
		return items, Step{}, fmt.Errorf("getting seen movies from file: %w", err)
	}

	ids := seen.IDs()
	kept, removed := exclude(items, func(item catalog.Item) bool {
		_, ok := ids[item.ID]
		return ok
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding movies based on seen file",
			zap.String("path", f.path),
			zap.Strings("excluded_movies", removed),
			zap.Int("movies_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: len(kept)}, nil
}

func (f *seenFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
