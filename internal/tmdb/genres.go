package tmdb

import (
	"fmt"
	"strings"
)

// DefaultPosterSize is the poster width used when none is given.
const DefaultPosterSize = "w500"

var genres = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
}

// GenreNames maps TMDB genre ids to names. Unknown ids become "Genre-<id>".
func GenreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := genres[id]
		if !ok {
			name = fmt.Sprintf("Genre-%d", id)
		}
		names = append(names, name)
	}
	return names
}

// PosterURL returns the full image URL for a poster path or an empty string without one.
func PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = DefaultPosterSize
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return imageURL + "/" + size + path
}

// Year extracts the year of a YYYY-MM-DD date.
func Year(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return date
	}
	return date[:4]
}
