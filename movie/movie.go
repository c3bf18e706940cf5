package movie

import (
	"cmp"
	"slices"
	"strings"
)

// Movie is an item of the catalog's popular list. Only ReleaseDate and
// Popularity drive behaviour; the rest is passed through to observers.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"` // YYYY-MM-DD, empty when unknown
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	Adult            bool    `json:"adult,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
}

// ReleasedIn returns the movies whose release date starts with year.
// Movies without a release date are dropped.
func ReleasedIn(movies []Movie, year string) []Movie {
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if m.ReleaseDate != "" && strings.HasPrefix(m.ReleaseDate, year) {
			out = append(out, m)
		}
	}
	return out
}

// SortByPopularity returns a copy of movies ordered by descending popularity.
// Equal scores keep their input order.
func SortByPopularity(movies []Movie) []Movie {
	out := slices.Clone(movies)
	slices.SortStableFunc(out, func(a, b Movie) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	return out
}

// Popular is the list published to observers: this year's releases, most
// popular first.
func Popular(movies []Movie, year string) []Movie {
	return SortByPopularity(ReleasedIn(movies, year))
}
