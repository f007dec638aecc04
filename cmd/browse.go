package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/tmdb"
)

type browseOutput struct {
	List       string        `json:"list"`
	Window     string        `json:"window,omitempty"`
	FirstPage  int           `json:"first_page"`
	LastPage   int           `json:"last_page"`
	TotalPages int           `json:"total_pages"`
	HasMore    bool          `json:"has_more"`
	Movies     []reportMovie `json:"movies"`
}

type pageFetcher func(ctx context.Context, page int) (*tmdb.Page, error)

var browseCmd = &cobra.Command{
	Use:       "browse popular|top-rated|trending",
	Short:     "Browse TMDB movie lists",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{tmdb.ListPopular, tmdb.ListTopRated, tmdb.ListTrending},
	Run: func(cmd *cobra.Command, args []string) {
		browse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().String("window", "week", "trending time window: day or week")
	browseCmd.Flags().Int("page", 1, "first page to fetch")
	browseCmd.Flags().Int("pages", 1, "how many pages to fetch at most")
}

func browse(cmd *cobra.Command, list string) {
	ctx, logger, config := setup(cmd)

	client, err := newTMDBClient(config.TMDB, logger)
	if err != nil {
		logger.Fatal("building the tmdb client", zap.Error(err))
	}

	window, _ := cmd.Flags().GetString("window")
	page, _ := cmd.Flags().GetInt("page")
	pages, _ := cmd.Flags().GetInt("pages")

	fetch := func(ctx context.Context, page int) (*tmdb.Page, error) {
		return client.List(ctx, list, window, page)
	}

	out, err := browsePages(ctx, fetch, page, pages, posterSize(config.TMDB))
	if err != nil {
		logger.Fatal("browsing movies", zap.String("list", list), zap.Error(err))
	}

	out.List = list
	if list == tmdb.ListTrending {
		out.Window = window
	}

	logger.Info("browse finished",
		zap.String("list", list),
		zap.Int("movies", len(out.Movies)),
		zap.Bool("has_more", out.HasMore),
	)

	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		logger.Fatal("printing movies", zap.Error(err))
	}
}

// browsePages fetches up to pages pages starting at start and stops early on the last page.
func browsePages(ctx context.Context, fetch pageFetcher, start, pages int, size string) (*browseOutput, error) {
	if start < 1 {
		start = 1
	}
	if pages < 1 {
		pages = 1
	}

	out := &browseOutput{FirstPage: start, Movies: []reportMovie{}}
	for n := start; n < start+pages; n++ {
		page, err := fetch(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}

		for _, movie := range page.Results {
			out.Movies = append(out.Movies, tmdbReportMovie(movie, size))
		}
		out.LastPage = n
		out.TotalPages = page.TotalPages
		out.HasMore = page.HasMore()

		if !out.HasMore {
			break
		}
	}

	return out, nil
}
