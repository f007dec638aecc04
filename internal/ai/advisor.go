package ai

import (
	"context"

	"github.com/spigell/movie-recommender/internal/catalog"
)

// Suggestion is a set of movies an AI provider picked for a free-text preference.
type Suggestion struct {
	Query     string
	Raw       string
	Matched   []catalog.Item
	Unmatched []string
	// Repeated lists suggested titles that named a movie already in Matched.
	Repeated []string
	// Fallback is set when none of the suggested titles were found in the catalog and Matched
	// comes from a plain text search for Query.
	Fallback bool
	// Analyzed is the number of catalog movies offered to the provider as context.
	Analyzed int
}

// Advisor turns natural-language preferences into catalog movies.
type Advisor interface {
	Suggest(ctx context.Context, preference string, topK int) (*Suggestion, error)
	Explain(ctx context.Context, title string) (string, error)
}
