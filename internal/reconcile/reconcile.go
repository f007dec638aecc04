// Package reconcile maps movie titles named in free text (a numbered list produced by a text
// generation model) back to catalog entries.
package reconcile

import (
	"regexp"
	"strings"

	"github.com/spigell/movie-recommender/internal/catalog"
)

const (
	DefaultMaxResults = 10

	separator = " - "
)

var (
	itemLine     = regexp.MustCompile(`^(\d+)\.(.*)$`)
	trailingYear = regexp.MustCompile(`\s*\((?:19|20)\d{2}\)\s*$`)
)

// Result is the outcome of a reconciliation. Matched keeps the order in which the text listed the
// movies unless Fallback is set, in which case it is in catalog order.
type Result struct {
	Query     string         `json:"query"`
	Matched   []catalog.Item `json:"matched_items"`
	Unmatched []string       `json:"unmatched_names"`
	// Repeated holds candidates that resolved to a movie matched earlier in the text.
	Repeated []string `json:"repeated_names"`
	Fallback bool     `json:"fallback"`
}

// Candidates extracts candidate titles from the numbered lines of text.
func Candidates(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		m := itemLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		title := m[2]
		if idx := strings.Index(title, separator); idx >= 0 {
			title = title[:idx]
		}

		if title = clean(title); title != "" {
			candidates = append(candidates, title)
		}
	}
	return candidates
}

func clean(title string) string {
	title = strings.NewReplacer("[", "", "]", "").Replace(title)
	title = strings.TrimSpace(title)
	// markdown emphasis and quotes around the whole title
	title = strings.Trim(title, `*_"`)
	return strings.TrimSpace(title)
}

// Reconcile matches the titles listed in text against c. Every candidate is tried as an exact
// (case-insensitive) title first and as a part of a catalog title second; candidates that match
// nothing are reported in Unmatched. A candidate that resolves to a movie already in Matched (say
// "Matrix" after "The Matrix") is not matched twice and is reported in Repeated instead. When
// nothing matched at all, the catalog is searched for query in titles, overviews and tags.
//
// Malformed text never fails the call. The only error is catalog.ErrUninitialized for an empty
// catalog.
func Reconcile(text, query string, c *catalog.Catalog, maxResults int) (*Result, error) {
	if c.Len() == 0 {
		return nil, catalog.ErrUninitialized
	}
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}

	result := &Result{
		Query:     query,
		Matched:   []catalog.Item{},
		Unmatched: []string{},
		Repeated:  []string{},
	}

	used := make(map[int]bool)
	for _, candidate := range Candidates(text) {
		if len(result.Matched) == maxResults {
			break
		}

		idx, item, ok := match(c, candidate)
		if !ok {
			result.Unmatched = append(result.Unmatched, candidate)
			continue
		}
		if used[idx] {
			result.Repeated = append(result.Repeated, candidate)
			continue
		}

		used[idx] = true
		result.Matched = append(result.Matched, item)
	}

	if len(result.Matched) == 0 {
		result.Matched = textSearch(c, query, maxResults)
		result.Fallback = true
	}

	return result, nil
}

func match(c *catalog.Catalog, candidate string) (int, catalog.Item, bool) {
	if idx, item, ok := lookup(c, candidate); ok {
		return idx, item, true
	}

	if stripped := trailingYear.ReplaceAllString(candidate, ""); stripped != candidate && stripped != "" {
		return lookup(c, stripped)
	}

	return -1, catalog.Item{}, false
}

func lookup(c *catalog.Catalog, title string) (int, catalog.Item, bool) {
	if idx, item, ok := c.Find(title); ok {
		return idx, item, true
	}
	return c.FindPartial(title)
}

func textSearch(c *catalog.Catalog, query string, limit int) []catalog.Item {
	needle := strings.ToLower(strings.TrimSpace(query))
	found := []catalog.Item{}
	if needle == "" {
		return found
	}

	for i := 0; i < c.Len() && len(found) < limit; i++ {
		item := c.At(i)
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Overview), needle) ||
			strings.Contains(strings.ToLower(item.Tags), needle) {
			found = append(found, item)
		}
	}
	return found
}
