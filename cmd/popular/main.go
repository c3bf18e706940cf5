package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"popmovies/movie"
	"popmovies/pkg/config"
	"popmovies/pkg/logger"
	"popmovies/tmdb"
)

type output struct {
	PopularMovies []movie.Movie `json:"popular_movies"`
	Error         string        `json:"error"`
}

func main() {
	var (
		baseURL string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "base-url", "", "TMDB API base URL (overrides TMDB_BASE_URL)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Give up waiting after this long (0 = wait forever)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.TMDB.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		slog.Error("build logger failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client := tmdb.NewClient(tmdb.Options{
		BaseURL:    cfg.TMDB.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.TMDB.Timeout) * time.Second},
	})
	vs := movie.NewViewState(ctx, tmdb.NewMovieRepository(client, cfg.TMDB.APIKey), movie.WithLogger(log))
	<-vs.Done()

	if err := writeOutput(os.Stdout, vs); err != nil {
		log.Errorw("write output failed", "error", err)
		os.Exit(1)
	}
	if vs.ErrorMessage().Value() != "" || ctx.Err() != nil {
		os.Exit(1)
	}
}

func writeOutput(w io.Writer, svc movie.Service) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		PopularMovies: svc.PopularMovies().Value(),
		Error:         svc.ErrorMessage().Value(),
	})
}
