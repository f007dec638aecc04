package catalog

import (
	"math"
	"sort"
	"strings"
)

const maxExamples = 10

// Item is a single recommendable movie.
type Item struct {
	ID    int    `json:"id" mapstructure:"id" db:"id"`
	Title string `json:"title" mapstructure:"title" db:"title"`
	// Tags is the free text the similarity matrix was derived from.
	Tags string `json:"tags,omitempty" mapstructure:"tags" db:"tags"`

	Overview    string   `json:"overview,omitempty" mapstructure:"overview"`
	Genres      []string `json:"genres,omitempty" mapstructure:"genres"`
	ReleaseDate string   `json:"release_date,omitempty" mapstructure:"release_date"`
	VoteAverage float64  `json:"vote_average,omitempty" mapstructure:"vote_average"`
	VoteCount   int      `json:"vote_count,omitempty" mapstructure:"vote_count"`
	Popularity  float64  `json:"popularity,omitempty" mapstructure:"popularity"`
}

// Year returns the release year or an empty string when the date is unknown.
func (i Item) Year() string {
	if len(i.ReleaseDate) < 4 {
		return ""
	}
	return i.ReleaseDate[:4]
}

// Score is the popularity score used to rank movies when no other signal is available.
func (i Item) Score() float64 {
	return i.VoteAverage*0.7 + math.Log1p(float64(i.VoteCount))*0.3
}

// Catalog is an ordered, immutable list of movies. The position of an item is the row of the
// similarity matrix that belongs to it.
type Catalog struct {
	items      []Item
	index      map[string]int
	duplicates []string
}

// Stats summarizes a catalog.
type Stats struct {
	TotalMovies  int      `json:"total_movies"`
	Duplicates   []string `json:"duplicates,omitempty"`
	SampleTitles []string `json:"sample_movies"`
}

// New builds a catalog from items. The input slice is copied.
func New(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrUninitialized
	}

	c := &Catalog{
		items: make([]Item, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)

	seen := make(map[string]bool)
	for idx, item := range c.items {
		key := normalize(item.Title)
		if _, ok := c.index[key]; ok {
			if !seen[key] {
				c.duplicates = append(c.duplicates, item.Title)
				seen[key] = true
			}
			continue
		}
		c.index[key] = idx
	}

	return c, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

func (c *Catalog) At(idx int) Item {
	return c.items[idx]
}

// Items returns a copy of all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Titles() []string {
	titles := make([]string, 0, len(c.items))
	for _, item := range c.items {
		titles = append(titles, item.Title)
	}
	return titles
}

// Find looks a title up case-insensitively. When the catalog holds the title more than once the
// first row wins.
func (c *Catalog) Find(title string) (int, Item, bool) {
	if c == nil {
		return -1, Item{}, false
	}
	idx, ok := c.index[normalize(title)]
	if !ok {
		return -1, Item{}, false
	}
	return idx, c.items[idx], true
}

// FindPartial returns the first item whose title contains query, ignoring case.
func (c *Catalog) FindPartial(query string) (int, Item, bool) {
	needle := normalize(query)
	if c == nil || needle == "" {
		return -1, Item{}, false
	}
	for idx, item := range c.items {
		if strings.Contains(normalize(item.Title), needle) {
			return idx, item, true
		}
	}
	return -1, Item{}, false
}

// Duplicates lists titles that appear in more than one row (compared case-insensitively). Lookups
// resolve such a title to its first row; the later rows stay ordinary catalog entries and can show
// up as neighbours of the first one.
func (c *Catalog) Duplicates() []string {
	out := make([]string, len(c.duplicates))
	copy(out, c.duplicates)
	return out
}

// Examples returns up to n titles from the head of the catalog.
func (c *Catalog) Examples(n int) []string {
	if n > len(c.items) {
		n = len(c.items)
	}
	titles := make([]string, 0, n)
	for _, item := range c.items[:n] {
		titles = append(titles, item.Title)
	}
	return titles
}

// NotFound builds the lookup error for title with a hint list.
func (c *Catalog) NotFound(title string) *NotFoundError {
	return &NotFoundError{Title: title, Examples: c.Examples(maxExamples)}
}

// Search returns up to limit items whose title contains query, in catalog order.
func (c *Catalog) Search(query string, limit int) []Item {
	needle := normalize(query)
	if needle == "" || limit <= 0 {
		return nil
	}

	var found []Item
	for _, item := range c.items {
		if strings.Contains(normalize(item.Title), needle) {
			found = append(found, item)
			if len(found) == limit {
				break
			}
		}
	}
	return found
}

// TopRated returns up to limit items ordered by Score, best first. Equal scores keep catalog order.
func (c *Catalog) TopRated(limit int) []Item {
	if limit <= 0 {
		return nil
	}

	ranked := c.Items()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

func (c *Catalog) Stats() Stats {
	return Stats{
		TotalMovies:  len(c.items),
		Duplicates:   c.Duplicates(),
		SampleTitles: c.Examples(5),
	}
}

func normalize(s string) string {
	return strings.ToLower(s)
}
