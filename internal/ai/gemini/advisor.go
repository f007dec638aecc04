package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/movie-recommender/internal/ai"
	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/logger"
	"github.com/spigell/movie-recommender/internal/reconcile"
	"github.com/spigell/movie-recommender/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

type catalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

var _ ai.Advisor = (*Advisor)(nil)

// Advisor asks Gemini for movies matching a free-text preference and maps the answer back to the
// catalog.
type Advisor struct {
	generator   contentGenerator
	movies      catalogSource
	contextSize int
	logger      *zap.Logger
	maxLogLen   int
}

var (
	//go:embed prompt.md
	promptTemplate string
	//go:embed explain.md
	explainTemplate string
	//go:embed system.md
	systemInstruction string
)

const (
	defaultContextSize   = 50
	defaultMaxLogLength  = 200
	unknownPlaceholder   = "Unknown"
	fallbackPromptFormat = "Recommend {{TOP_K}} movies for \"{{QUERY}}\" from this list, one per line as \"N. Title - reason\":\n{{MOVIES}}"
)

func NewAdvisor(generator contentGenerator, movies catalogSource, logger *zap.Logger, contextSize, maxLogLength int) *Advisor {
	if contextSize <= 0 {
		contextSize = defaultContextSize
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		generator:   generator,
		movies:      movies,
		contextSize: contextSize,
		logger:      logger,
		maxLogLen:   maxLogLength,
	}
}

// Suggest sends preference together with the best rated catalog movies to Gemini and reconciles
// the titles of the reply with the catalog. At most topK movies are returned.
func (a *Advisor) Suggest(ctx context.Context, preference string, topK int) (*ai.Suggestion, error) {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return nil, errors.New("preference must not be empty")
	}
	if topK < 1 {
		topK = reconcile.DefaultMaxResults
	}

	c, err := a.movies.Catalog()
	if err != nil {
		return nil, err
	}

	offered := c.TopRated(a.contextSize)
	prompt := buildPrompt(preference, topK, offered)

	a.logger.Debug("gemini suggest request",
		logger.FieldQuery(preference),
		logger.FieldModel(a.generator.Model()),
		zap.Int("context_movies", len(offered)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini suggest response",
		logger.FieldQuery(preference),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	result, err := reconcile.Reconcile(raw, preference, c, topK)
	if err != nil {
		return nil, err
	}

	if result.Fallback {
		a.logger.Info("no suggested title matched the catalog, fell back to text search",
			logger.FieldQuery(preference),
			zap.Strings("unmatched", result.Unmatched),
		)
	}

	return &ai.Suggestion{
		Query:     preference,
		Raw:       raw,
		Matched:   result.Matched,
		Unmatched: result.Unmatched,
		Repeated:  result.Repeated,
		Fallback:  result.Fallback,
		Analyzed:  len(offered),
	}, nil
}

// Explain asks Gemini for an analysis of a catalog movie. The title is looked up exactly first and
// as a part of a catalog title second.
func (a *Advisor) Explain(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title must not be empty")
	}

	c, err := a.movies.Catalog()
	if err != nil {
		return "", err
	}

	_, item, ok := c.Find(title)
	if !ok {
		if _, item, ok = c.FindPartial(title); !ok {
			return "", c.NotFound(title)
		}
	}

	prompt := buildExplainPrompt(item)

	a.logger.Debug("gemini explain request",
		logger.FieldTitle(item.Title),
		logger.FieldModel(a.generator.Model()),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("explain %q: %w", item.Title, err)
	}

	return raw, nil
}

func buildPrompt(preference string, topK int, movies []catalog.Item) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = fallbackPromptFormat
	}

	return strings.NewReplacer(
		"{{QUERY}}", preference,
		"{{TOP_K}}", strconv.Itoa(topK),
		"{{MOVIES}}", FormatMovies(movies),
	).Replace(template)
}

func buildExplainPrompt(item catalog.Item) string {
	overview := item.Overview
	if strings.TrimSpace(overview) == "" {
		overview = "No description available"
	}

	return strings.NewReplacer(
		"{{TITLE}}", item.Title,
		"{{YEAR}}", orUnknown(item.Year()),
		"{{GENRES}}", orUnknown(strings.Join(item.Genres, ", ")),
		"{{RATING}}", strconv.FormatFloat(item.VoteAverage, 'f', 1, 64),
		"{{OVERVIEW}}", overview,
	).Replace(explainTemplate)
}

// FormatMovies renders movies one per line the way they are offered to the model.
func FormatMovies(movies []catalog.Item) string {
	lines := make([]string, 0, len(movies))
	for _, m := range movies {
		lines = append(lines, fmt.Sprintf("- %s (%s) | Genres: %s | Rating: %.1f/10 | Popularity: %.2f",
			m.Title,
			orUnknown(m.Year()),
			orUnknown(strings.Join(m.Genres, ", ")),
			m.VoteAverage,
			m.Popularity,
		))
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownPlaceholder
	}
	return s
}
