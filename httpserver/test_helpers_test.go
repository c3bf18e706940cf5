package httpserver_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"popmovies/httpserver"
	"popmovies/movie"
	"popmovies/pkg/config"
	"popmovies/pkg/state"
)

func testConfig() *config.Config {
	cfg := &config.Config{Port: 8080}
	cfg.TMDB.APIKey = "test-api-key"
	return cfg
}

// fakeMovieService publishes whatever the test puts into its cells.
type fakeMovieService struct {
	movies       *state.Cell[[]movie.Movie]
	errorMessage *state.Cell[string]
}

func newFakeMovieService() *fakeMovieService {
	return &fakeMovieService{
		movies:       state.NewCell([]movie.Movie{}),
		errorMessage: state.NewCell(""),
	}
}

func (f *fakeMovieService) PopularMovies() state.Observable[[]movie.Movie] {
	return f.movies
}

func (f *fakeMovieService) ErrorMessage() state.Observable[string] {
	return f.errorMessage
}

func decodeAPIResponse(t *testing.T, recorder *httptest.ResponseRecorder) httpserver.APIResponse {
	t.Helper()
	var resp httpserver.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func decodeAPIResult(t *testing.T, result interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
