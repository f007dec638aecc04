package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/ai"
	"github.com/spigell/movie-recommender/internal/ai/gemini"
	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/logger"
	"github.com/spigell/movie-recommender/internal/secrets"
)

const (
	providerGemini = "gemini"
	geminiKeyEnv   = "GEMINI_API_KEY"
)

type catalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

func newAdvisor(ctx context.Context, cfg *AIConfig, movies catalogSource, log *zap.Logger) (ai.Advisor, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = providerGemini
	}
	if provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file)", err)
	}

	genLogger := logger.WithCommonFields(log, provider, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	advisorLogger := logger.WithCommonFields(log, provider, generator.Model())

	return gemini.NewAdvisor(generator, movies, advisorLogger, cfg.ContextSize, cfg.Gemini.MaxLogLength), nil
}
