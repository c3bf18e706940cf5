package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"popmovies/httpserver"
	"popmovies/movie"
	"popmovies/pkg/config"
	"popmovies/pkg/logger"
	"popmovies/pkg/sentry"
	"popmovies/tmdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Cannot load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		slog.Error("Cannot build logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalw("Cannot init sentry", "error", err)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := tmdb.NewClient(tmdb.Options{
		BaseURL:    cfg.TMDB.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.TMDB.Timeout) * time.Second},
	})
	viewState := movie.NewViewState(ctx, tmdb.NewMovieRepository(client, cfg.TMDB.APIKey),
		movie.WithLogger(log),
		movie.WithErrorReporter(func(err error) {
			sentry.WithTags(map[string]string{"component": "movie_view_state"}).Error(err)
		}),
	)

	server := httpserver.Default(cfg)
	server.Logger = log
	server.MovieService = viewState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server started!", "addr", server.Addr, "view_state_id", viewState.ID())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
