package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/recommender"
)

const defaultRecommendations = 5

type recommendOutput struct {
	Movie           string                       `json:"movie"`
	Recommendations []recommender.Recommendation `json:"recommendations"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend movies similar to the given one",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		recommend(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntP("top", "k", defaultRecommendations, "number of recommendations")
}

func recommend(cmd *cobra.Command, title string) {
	ctx, logger, config := setup(cmd)

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the model", zap.Error(err))
	}

	k, _ := cmd.Flags().GetInt("top")

	recommendations, err := engine.Recommend(title, k)
	if err != nil {
		fatalLookup(logger, "recommending movies", title, err)
	}

	if err := printJSON(cmd.OutOrStdout(), recommendOutput{Movie: title, Recommendations: recommendations}); err != nil {
		logger.Fatal("printing recommendations", zap.Error(err))
	}
}
