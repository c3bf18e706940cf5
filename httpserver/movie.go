package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"popmovies/errs"
	"popmovies/movie"
)

type PopularMoviesResponse struct {
	Movies []movie.Movie `json:"movies"`
	Error  string        `json:"error"`
}

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("/movies/popular", s.handlePopularMovies)
	g.GET("/movies/popular/stream", s.handlePopularMoviesStream)
}

// handlePopularMovies returns the currently published state.
func (s *Server) handlePopularMovies(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	return writeSuccess(c, http.StatusOK, PopularMoviesResponse{
		Movies: s.MovieService.PopularMovies().Value(),
		Error:  s.MovieService.ErrorMessage().Value(),
	})
}

// handlePopularMoviesStream pushes the published state as server-sent events:
// a "movies" and an "error" event with the current values, then one event per
// change until the client goes away or the server shuts down.
func (s *Server) handlePopularMoviesStream(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	ctx := c.Request().Context()
	movies := s.MovieService.PopularMovies().Subscribe(ctx)
	errorMessages := s.MovieService.ErrorMessage().Subscribe(ctx)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case v, ok := <-movies:
			if !ok {
				return nil
			}
			if err := writeEvent(res, "movies", v); err != nil {
				return err
			}
		case v, ok := <-errorMessages:
			if !ok {
				return nil
			}
			if err := writeEvent(res, "error", v); err != nil {
				return err
			}
		}
	}
}

func writeEvent(res *echo.Response, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}
