package recommender

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/spigell/movie-recommender/internal/catalog"
	"github.com/spigell/movie-recommender/internal/similarity"
)

var ErrInvalidK = errors.New("number of recommendations must be at least 1")

// Recommendation is a single neighbour of the queried movie.
type Recommendation struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Model is a catalog together with the similarity matrix computed for it. Row i of the matrix
// belongs to catalog item i. Only NewModel builds a usable Model.
type Model struct {
	catalog    *catalog.Catalog
	similarity *similarity.Matrix
}

// Stats describes the loaded model.
type Stats struct {
	catalog.Stats
	MatrixShape [2]int `json:"similarity_matrix_shape"`
}

// NewModel pairs a catalog with its similarity matrix.
func NewModel(c *catalog.Catalog, m *similarity.Matrix) (*Model, error) {
	if c.Len() == 0 || m.Dim() == 0 {
		return nil, catalog.ErrUninitialized
	}
	if c.Len() != m.Dim() {
		return nil, fmt.Errorf("catalog has %d movies but similarity matrix is %dx%d", c.Len(), m.Dim(), m.Dim())
	}
	return &Model{catalog: c, similarity: m}, nil
}

// check rejects a Model that was not paired by NewModel.
func (m *Model) check() error {
	if m == nil || m.catalog.Len() == 0 || m.similarity.Dim() == 0 {
		return catalog.ErrUninitialized
	}
	if m.catalog.Len() != m.similarity.Dim() {
		return fmt.Errorf("catalog has %d movies but similarity matrix is %dx%d: %w",
			m.catalog.Len(), m.similarity.Dim(), m.similarity.Dim(), catalog.ErrUninitialized)
	}
	return nil
}

// Engine serves recommendations from the current model. A new model replaces the old one as a
// whole, so a call never sees a catalog and a matrix from different loads.
// The zero value is ready to use and returns catalog.ErrUninitialized until a model is swapped in.
type Engine struct {
	model atomic.Pointer[Model]
}

// New returns an engine serving m.
func New(m *Model) (*Engine, error) {
	e := &Engine{}
	if _, err := e.Swap(m); err != nil {
		return nil, err
	}
	return e, nil
}

// Swap installs m and returns the previous model. A model whose catalog and matrix do not pair
// up is refused and the current one stays in place.
func (e *Engine) Swap(m *Model) (*Model, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	return e.model.Swap(m), nil
}

// Catalog returns the catalog of the current model.
func (e *Engine) Catalog() (*catalog.Catalog, error) {
	m := e.model.Load()
	if m == nil {
		return nil, catalog.ErrUninitialized
	}
	return m.catalog, nil
}

// Recommend returns the k movies most similar to title.
func (e *Engine) Recommend(title string, k int) ([]Recommendation, error) {
	m := e.model.Load()
	if m == nil {
		return nil, catalog.ErrUninitialized
	}
	return m.Recommend(title, k)
}

// Recommend ranks every movie by its similarity to title, best first, and returns the top k
// excluding title itself. Equal scores are ordered by catalog position.
//
// Only the row of title is excluded. When the catalog holds the same title twice (see
// catalog.Duplicates), the first row is the query and the other one can come back as its
// neighbour.
func (m *Model) Recommend(title string, k int) ([]Recommendation, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, ErrInvalidK
	}

	idx, _, ok := m.catalog.Find(title)
	if !ok {
		return nil, m.catalog.NotFound(title)
	}

	type scored struct {
		index int
		score float64
	}

	row := m.similarity.Row(idx)
	ranked := make([]scored, len(row))
	for i, score := range row {
		ranked[i] = scored{index: i, score: score}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].index < ranked[b].index
	})

	limit := k
	if n := len(ranked) - 1; limit > n {
		limit = n
	}

	out := make([]Recommendation, 0, limit)
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		if r.index == idx {
			continue
		}
		item := m.catalog.At(r.index)
		out = append(out, Recommendation{
			ID:              item.ID,
			Title:           item.Title,
			SimilarityScore: round3(r.score),
		})
	}

	return out, nil
}

// Info returns the catalog entry for title.
func (e *Engine) Info(title string) (catalog.Item, error) {
	m := e.model.Load()
	if m == nil {
		return catalog.Item{}, catalog.ErrUninitialized
	}

	_, item, ok := m.catalog.Find(title)
	if !ok {
		return catalog.Item{}, m.catalog.NotFound(title)
	}
	return item, nil
}

// Search finds movies whose title contains query.
func (e *Engine) Search(query string, limit int) ([]catalog.Item, error) {
	m := e.model.Load()
	if m == nil {
		return nil, catalog.ErrUninitialized
	}
	return m.catalog.Search(query, limit), nil
}

func (e *Engine) Stats() (Stats, error) {
	m := e.model.Load()
	if m == nil {
		return Stats{}, catalog.ErrUninitialized
	}

	dim := m.similarity.Dim()
	return Stats{Stats: m.catalog.Stats(), MatrixShape: [2]int{dim, dim}}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
