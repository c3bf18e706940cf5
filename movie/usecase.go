package movie

import (
	"context"

	"popmovies/pkg/state"
)

// Service is what the UI layer binds to.
type Service interface {
	PopularMovies() state.Observable[[]Movie]
	ErrorMessage() state.Observable[string]
}

// Repository fetches the first page of popular movies. Every call performs
// exactly one request and returns either the list or an error.
type Repository interface {
	FetchPopularMovies(ctx context.Context) ([]Movie, error)
}
