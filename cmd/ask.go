package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/ai"
	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/filtering"
	"github.com/spigell/movie-recommender/internal/recommender"
)

const (
	PromptSimilar  = "Show similar movies for a pick"
	PromptExplain  = "Explain a pick"
	PromptMarkSeen = "Mark all movies as seen"
	PromptToFile   = "Dump movies to file"
	PromptExit     = "Exit"
	PromptBack     = "back"

	defaultSuggestions = 10
)

var errExit = errors.New("exit requested")

var askCmd = &cobra.Command{
	Use:   "ask <preference>",
	Short: "Ask the AI provider for catalog movies matching a free-text preference",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ask(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntP("number", "n", defaultSuggestions, "maximum number of movies to suggest")
	askCmd.Flags().BoolP("yes", "y", false, "print the result and exit without the interactive menu")
	askCmd.Flags().StringP("seen-file", "s", "", "file with movies to exclude from suggestions. Default is unset.")
	askCmd.Flags().StringSlice("skip-filter", nil, "filters to disable: seen, min_rating, genres")

	viper.BindPFlag("filters.seen-file", askCmd.Flags().Lookup("seen-file"))
}

type session struct {
	ctx     context.Context
	logger  *zap.Logger
	config  *Config
	engine  *recommender.Engine
	advisor ai.Advisor
	report  *askReport
	items   []catalog.Item
}

func ask(cmd *cobra.Command, preference string) {
	ctx, logger, config := setup(cmd)

	logger.Info("starting the movie-recommender", zap.String("version", version))

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the model", zap.Error(err))
	}

	advisor, err := newAdvisor(ctx, config.AI, engine, logger)
	if err != nil {
		logger.Fatal("building the ai advisor", zap.Error(err))
	}

	n, _ := cmd.Flags().GetInt("number")

	suggestion, err := advisor.Suggest(ctx, preference, n)
	if err != nil {
		logger.Fatal("asking for suggestions", zap.Error(err))
	}

	items, topRated := suggestion.Matched, false
	if len(items) == 0 {
		movies, err := engine.Catalog()
		if err != nil {
			logger.Fatal("getting the catalog", zap.Error(err))
		}
		items, topRated = movies.TopRated(n), true
		logger.Info("nothing matched the preference, showing top rated movies", zap.Int("count", len(items)))
	}

	steps := filtering.Default()
	skipped, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skipped {
		filtering.DisableByName(steps, strings.TrimSpace(name), "disabled by --skip-filter")
	}

	items, err = filtering.Run(ctx, config.Filters, filtering.Deps{Logger: logger}, steps, items)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	report := buildReport(suggestion, items, topRated, posters(ctx, config.TMDB, items, logger))
	if err := printJSON(cmd.OutOrStdout(), report); err != nil {
		logger.Fatal("printing suggestions", zap.Error(err))
	}

	if len(items) == 0 {
		logger.Info("exiting", zap.String("reason", "no movies left after filters"))
		return
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return
	}

	s := &session{
		ctx:     ctx,
		logger:  logger,
		config:  config,
		engine:  engine,
		advisor: advisor,
		report:  report,
		items:   items,
	}

	for {
		prompt := promptui.Select{
			Label: "What next?",
			Items: s.actions(),
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(cmd, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (s *session) seenFile() string {
	if s.config.Filters == nil {
		return ""
	}
	return strings.TrimSpace(s.config.Filters.SeenFile)
}

func (s *session) actions() []string {
	actions := []string{PromptSimilar, PromptExplain}
	if s.seenFile() != "" && len(s.items) > 0 {
		actions = append(actions, PromptMarkSeen)
	}
	return append(actions, PromptToFile, PromptExit)
}

func (s *session) handleAction(cmd *cobra.Command, action string) error {
	switch action {
	case PromptSimilar:
		title, err := s.pick()
		if err != nil || title == "" {
			return err
		}

		recommendations, err := s.engine.Recommend(title, defaultRecommendations)
		if err != nil {
			return fmt.Errorf("recommend movies similar to %q: %w", title, err)
		}
		return printJSON(cmd.OutOrStdout(), recommendOutput{Movie: title, Recommendations: recommendations})
	case PromptExplain:
		title, err := s.pick()
		if err != nil || title == "" {
			return err
		}

		text, err := s.advisor.Explain(s.ctx, title)
		if err != nil {
			s.logger.Warn("explaining a movie failed", zap.String("title", title), zap.Error(err))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	case PromptMarkSeen:
		return s.markSeen()
	case PromptToFile:
		filename, err := dumpToTmpFile(s.report)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// pick asks for one of the suggested movies. An empty title means the user went back.
func (s *session) pick() (string, error) {
	labels := make([]string, 0, len(s.report.Movies)+1)
	for _, m := range s.report.Movies {
		labels = append(labels, movieLabel(m))
	}

	moviePrompt := promptui.Select{
		Label: "Choose a movie and press ENTER",
		Items: append(labels, PromptBack),
	}

	idx, selected, err := moviePrompt.Run()
	if err != nil {
		return "", err
	}
	if selected == PromptBack {
		return "", nil
	}

	return s.report.Movies[idx].Title, nil
}

func (s *session) markSeen() error {
	path := s.seenFile()

	seen, err := filtering.GetSeenMoviesFromFile(path)
	if err != nil {
		return err
	}

	seen.Append(filtering.NewSeenMovies(s.items, time.Now()))

	if err := seen.ToFile(path); err != nil {
		return err
	}

	s.logger.Info("appended to seen file", zap.String("filename", path), zap.Int("movies", len(s.items)))

	s.items = nil
	return nil
}
