package filtering

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/movie-recommender/internal/catalog"
)

// SeenMovies is the content of the seen-file: movies the user does not want suggested again.
type SeenMovies struct {
	Items []*SeenMovie
}

type SeenMovie struct {
	ID     int
	Title  string
	SeenAt time.Time
}

// NewSeenMovies marks items as seen at the given time.
func NewSeenMovies(items []catalog.Item, at time.Time) *SeenMovies {
	seen := &SeenMovies{}
	for _, item := range items {
		seen.Items = append(seen.Items, &SeenMovie{
			ID:     item.ID,
			Title:  item.Title,
			SeenAt: at.UTC(),
		})
	}
	return seen
}

// GetSeenMoviesFromFile reads a seen-file. A missing or empty file is an empty list.
func GetSeenMoviesFromFile(path string) (*SeenMovies, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &SeenMovies{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &SeenMovies{}, nil
	}

	var seen SeenMovies
	if err := json.NewDecoder(file).Decode(&seen); err != nil {
		return nil, err
	}
	return &seen, nil
}

// Append adds the movies of s that are not in the list yet.
func (v *SeenMovies) Append(s *SeenMovies) {
	known := v.IDs()
	for _, movie := range s.Items {
		if _, ok := known[movie.ID]; ok {
			continue
		}
		known[movie.ID] = struct{}{}
		v.Items = append(v.Items, movie)
	}
}

func (v *SeenMovies) IDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(v.Items))
	for _, movie := range v.Items {
		ids[movie.ID] = struct{}{}
	}
	return ids
}

func (v *SeenMovies) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
