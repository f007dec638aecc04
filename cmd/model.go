package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/logger"
	"github.com/spigell/movie-recommender/internal/recommender"
	"github.com/spigell/movie-recommender/internal/similarity"
)

// setup builds the logger and reads the config shared by every command.
func setup(cmd *cobra.Command) (context.Context, *zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return ctx, logger, config
}

// loadEngine reads the catalog and the similarity matrix concurrently and pairs them.
func loadEngine(ctx context.Context, config *Config, logger *zap.Logger) (*recommender.Engine, error) {
	var (
		movies *catalog.Catalog
		matrix *similarity.Matrix
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = catalog.Load(gctx, config.Catalog)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		path := strings.TrimSpace(config.Similarity.Path)
		if path == "" {
			return fmt.Errorf("similarity matrix path is not configured: %w", catalog.ErrUninitialized)
		}

		var err error
		matrix, err = similarity.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading similarity matrix: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if duplicates := movies.Duplicates(); len(duplicates) > 0 {
		logger.Warn("catalog has duplicate titles, lookups use the first one and the rest count as neighbours",
			zap.Strings("titles", duplicates),
		)
	}

	model, err := recommender.NewModel(movies, matrix)
	if err != nil {
		return nil, err
	}

	logger.Info("model loaded",
		zap.Int("movies", movies.Len()),
		zap.String("catalog", config.Catalog.Path),
		zap.String("similarity", config.Similarity.Path),
	)

	return recommender.New(model)
}

// fatalLookup reports a failed title lookup, listing a few catalog titles when the title is unknown.
func fatalLookup(logger *zap.Logger, msg, title string, err error) {
	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		logger.Fatal(msg,
			zap.String("title", title),
			zap.Strings("examples", notFound.Examples),
			zap.String("hint", "check the spelling or pick one of the examples"),
		)
	}
	logger.Fatal(msg, zap.String("title", title), zap.Error(err))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// redacted returns a copy of config without inline secrets, for logging.
func redacted(config *Config) *Config {
	c := *config
	if c.AI != nil && c.AI.Gemini != nil && c.AI.Gemini.APIKey != "" {
		ai := *c.AI
		gemini := *ai.Gemini
		gemini.APIKey = "***"
		ai.Gemini = &gemini
		c.AI = &ai
	}
	if c.TMDB != nil && c.TMDB.APIKey != "" {
		t := *c.TMDB
		t.APIKey = "***"
		c.TMDB = &t
	}
	return &c
}
