package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/tmdb"
)

type infoOutput struct {
	Movie   reportMovie `json:"movie"`
	Tagline string      `json:"tagline,omitempty"`
	Runtime int         `json:"runtime,omitempty"`
}

type movieDetailer interface {
	Movie(ctx context.Context, id int) (*tmdb.Movie, error)
}

var infoCmd = &cobra.Command{
	Use:   "info <title>",
	Short: "Show a catalog movie, with TMDB details when enabled",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func info(cmd *cobra.Command, title string) {
	ctx, logger, config := setup(cmd)

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the model", zap.Error(err))
	}

	item, err := engine.Info(title)
	if err != nil {
		fatalLookup(logger, "looking up a movie", title, err)
	}

	var details movieDetailer
	if config.TMDB != nil && config.TMDB.Enabled {
		client, err := newTMDBClient(config.TMDB, logger)
		if err != nil {
			logger.Warn("skipping tmdb details", zap.Error(err))
		} else {
			details = client
		}
	}

	out := movieInfo(ctx, item, details, posterSize(config.TMDB), logger)
	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		logger.Fatal("printing movie info", zap.Error(err))
	}
}

// movieInfo describes item. Catalog ids are TMDB ids, so details are fetched by id when a client is
// given. Details are best effort.
func movieInfo(ctx context.Context, item catalog.Item, client movieDetailer, size string, logger *zap.Logger) infoOutput {
	if client == nil {
		return infoOutput{Movie: newReportMovie(item, "")}
	}

	details, err := client.Movie(ctx, item.ID)
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		logger.Info("movie is unknown to tmdb", zap.String("title", item.Title), zap.Int("id", item.ID))
		return infoOutput{Movie: newReportMovie(item, "")}
	case err != nil:
		logger.Warn("getting tmdb details", zap.String("title", item.Title), zap.Error(err))
		return infoOutput{Movie: newReportMovie(item, "")}
	}

	return infoOutput{
		Movie:   newReportMovie(withDetails(item, details), tmdb.PosterURL(details.PosterPath, size)),
		Tagline: details.Tagline,
		Runtime: details.Runtime,
	}
}
