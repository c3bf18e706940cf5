package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"popmovies/errs"
	"popmovies/movie"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

var ErrMissingAPIKey = errs.Errorf(errs.EINVALID, "tmdb: api key is required")

// PopularMoviesPage is the body of GET /movie/popular.
type PopularMoviesPage struct {
	Page         int           `json:"page"`
	Results      []movie.Movie `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the TMDB v3 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// GetPopularMovies requests the first page of popular movies.
func (c *Client) GetPopularMovies(ctx context.Context, apiKey string) (*PopularMoviesPage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("api_key", apiKey)
	query.Set("page", "1")
	endpoint := c.baseURL + "/movie/popular?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(outcomeTransportError, started)
		return nil, fmt.Errorf("tmdb: get popular movies: %w", redactKey(err))
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		observeRequest(outcomeStatusError, started)
		return nil, err
	}

	var page PopularMoviesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		observeRequest(outcomeDecodeError, started)
		return nil, fmt.Errorf("tmdb: decode popular movies: %w", err)
	}

	observeRequest(outcomeSuccess, started)
	return &page, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.Errorf(errs.EUNAUTHORIZED, "tmdb: invalid api key")
	case resp.StatusCode == http.StatusNotFound:
		return errs.Errorf(errs.ENOTFOUND, "tmdb: popular movies endpoint not found")
	default:
		return errs.Errorf(errs.EUNAVAILABLE, "tmdb: unexpected status: %s", resp.Status)
	}
}

// redactKey drops the request URL from transport errors so the api key never
// reaches logs or the published error message.
func redactKey(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		return urlErr.Err
	}
	return err
}
