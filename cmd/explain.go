package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var explainCmd = &cobra.Command{
	Use:   "explain <title>",
	Short: "Ask the AI provider for an analysis of a catalog movie",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		explain(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func explain(cmd *cobra.Command, title string) {
	ctx, logger, config := setup(cmd)

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the model", zap.Error(err))
	}

	advisor, err := newAdvisor(ctx, config.AI, engine, logger)
	if err != nil {
		logger.Fatal("building the ai advisor", zap.Error(err))
	}

	text, err := advisor.Explain(ctx, title)
	if err != nil {
		fatalLookup(logger, "explaining a movie", title, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
}
