package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find catalog movies whose title contains the query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "l", defaultSearchLimit, "maximum number of movies to return")
}

func search(cmd *cobra.Command, query string) {
	ctx, logger, config := setup(cmd)

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the model", zap.Error(err))
	}

	limit, _ := cmd.Flags().GetInt("limit")

	found, err := engine.Search(query, limit)
	if err != nil {
		logger.Fatal("searching movies", zap.Error(err))
	}

	logger.Info("search finished", zap.String("query", query), zap.Int("count", len(found)))

	movies := make([]reportMovie, 0, len(found))
	for _, item := range found {
		movies = append(movies, newReportMovie(item, ""))
	}

	if err := printJSON(cmd.OutOrStdout(), movies); err != nil {
		logger.Fatal("printing movies", zap.Error(err))
	}
}
