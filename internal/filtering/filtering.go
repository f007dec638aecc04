package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
)

// Filter represents a single filtering step applied to suggested movies.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, items []catalog.Item) ([]catalog.Item, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	SeenFile      string   `mapstructure:"seen-file"`
	MinRating     float64  `mapstructure:"min-rating"`
	MinVotes      int      `mapstructure:"min-votes"`
	ExcludeGenres []string `mapstructure:"exclude-genres"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns every filter in the order they run.
func Default() []Filter {
	return []Filter{NewSeen(), NewMinRating(), NewGenres()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the movies left.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, items []catalog.Item) ([]catalog.Item, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, items)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		items = next
	}

	return items, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// exclude splits items into the kept ones and the titles of the dropped ones. The input slice is
// not modified.
func exclude(items []catalog.Item, drop func(catalog.Item) bool) ([]catalog.Item, []string) {
	kept := make([]catalog.Item, 0, len(items))
	var dropped []string
	for _, item := range items {
		if drop(item) {
			dropped = append(dropped, item.Title)
			continue
		}
		kept = append(kept, item)
	}
	return kept, dropped
}
