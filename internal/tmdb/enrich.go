package tmdb

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type searcher interface {
	SearchMovies(ctx context.Context, query string, page int) (*Page, error)
}

// Enrich looks every title up on TMDB and returns the first search hit per title. Titles without a
// hit or with a failed lookup are logged and left out. Only a cancelled ctx fails the call.
func Enrich(ctx context.Context, client searcher, logger *zap.Logger, titles []string, concurrency int) (map[string]*Movie, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	var (
		mu    sync.Mutex
		found = make(map[string]*Movie, len(titles))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, title := range titles {
		g.Go(func() error {
			page, err := client.SearchMovies(gctx, title, 1)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("tmdb lookup failed", zap.String("title", title), zap.Error(err))
				return nil
			}
			if len(page.Results) == 0 {
				logger.Debug("tmdb has no match", zap.String("title", title))
				return nil
			}

			mu.Lock()
			found[title] = page.Results[0]
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return found, err
	}

	return found, nil
}
