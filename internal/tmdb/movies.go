package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/movie-recommender/internal/catalog"
)

const (
	searchPath   = "/search/movie"
	popularPath  = "/movie/popular"
	topRatedPath = "/movie/top_rated"
	trendingPath = "/trending/movie/"
	moviePath    = "/movie/"
)

// Movie lists served by List.
const (
	ListPopular  = "popular"
	ListTopRated = "top-rated"
	ListTrending = "trending"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	VoteCount     int     `json:"vote_count,omitempty"`
	Popularity    float64 `json:"popularity,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	// GenreIDs is set on list results, Genres on movie details.
	GenreIDs []int   `json:"genre_ids,omitempty"`
	Genres   []Genre `json:"genres,omitempty"`
	Runtime  int     `json:"runtime,omitempty"`
	Tagline  string  `json:"tagline,omitempty"`
}

// GenreNames returns the names of the movie genres regardless of the endpoint it came from.
func (m *Movie) GenreNames() []string {
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		return names
	}
	return GenreNames(m.GenreIDs)
}

// Item converts the movie into a catalog item.
func (m *Movie) Item() catalog.Item {
	return catalog.Item{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		Genres:      m.GenreNames(),
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		Popularity:  m.Popularity,
	}
}

type Page struct {
	Page         int
	Results      []*Movie
	TotalPages   int
	TotalResults int
}

// HasMore reports whether pages after this one exist.
func (p *Page) HasMore() bool {
	return p.Page < p.TotalPages
}

type pageResponse struct {
	Page         int              `json:"page"`
	Results      []map[string]any `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query must not be empty")
	}

	q := url.Values{}
	q.Set("query", query)
	return c.list(ctx, searchPath, q, page)
}

func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	return c.list(ctx, popularPath, nil, page)
}

func (c *Client) TopRated(ctx context.Context, page int) (*Page, error) {
	return c.list(ctx, topRatedPath, nil, page)
}

// Trending lists trending movies for window, which is "day" or "week".
func (c *Client) Trending(ctx context.Context, window string, page int) (*Page, error) {
	switch window {
	case "":
		window = "week"
	case "day", "week":
	default:
		return nil, fmt.Errorf("unknown trending window %q", window)
	}

	return c.list(ctx, trendingPath+window, nil, page)
}

// List fetches a page of the named movie list. window is only used by ListTrending.
func (c *Client) List(ctx context.Context, name, window string, page int) (*Page, error) {
	switch name {
	case ListPopular:
		return c.Popular(ctx, page)
	case ListTopRated:
		return c.TopRated(ctx, page)
	case ListTrending:
		return c.Trending(ctx, window, page)
	default:
		return nil, fmt.Errorf("unknown movie list %q, use %s, %s or %s", name, ListPopular, ListTopRated, ListTrending)
	}
}

// Movie fetches the details of a single movie.
func (c *Client) Movie(ctx context.Context, id int) (*Movie, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, moviePath+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, err
	}

	var movie Movie
	if err := decode(raw, &movie); err != nil {
		return nil, fmt.Errorf("decode movie %d: %w", id, err)
	}

	return &movie, nil
}

func (c *Client) list(ctx context.Context, path string, q url.Values, page int) (*Page, error) {
	if q == nil {
		q = url.Values{}
	}
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	var resp pageResponse
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	var movies []*Movie
	if err := decode(resp.Results, &movies); err != nil {
		return nil, fmt.Errorf("decode %s results: %w", path, err)
	}

	return &Page{
		Page:         resp.Page,
		Results:      movies,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}, nil
}

func decode(input, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
