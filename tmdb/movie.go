package tmdb

import (
	"context"

	"popmovies/movie"
)

// Catalog is the subset of the TMDB API the repository needs.
type Catalog interface {
	GetPopularMovies(ctx context.Context, apiKey string) (*PopularMoviesPage, error)
}

// MovieRepository implements movie.Repository on top of the TMDB catalog.
type MovieRepository struct {
	catalog Catalog
	apiKey  string
}

func NewMovieRepository(catalog Catalog, apiKey string) *MovieRepository {
	return &MovieRepository{
		catalog: catalog,
		apiKey:  apiKey,
	}
}

func (r *MovieRepository) FetchPopularMovies(ctx context.Context) ([]movie.Movie, error) {
	page, err := r.catalog.GetPopularMovies(ctx, r.apiKey)
	if err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []movie.Movie{}, nil
	}
	return page.Results, nil
}
