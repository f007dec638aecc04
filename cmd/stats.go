package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics of the loaded catalog and similarity matrix",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, logger, config := setup(cmd)

		engine, err := loadEngine(ctx, config, logger)
		if err != nil {
			logger.Fatal("loading the model", zap.Error(err))
		}

		stats, err := engine.Stats()
		if err != nil {
			logger.Fatal("getting stats", zap.Error(err))
		}

		if err := printJSON(cmd.OutOrStdout(), stats); err != nil {
			logger.Fatal("printing stats", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
