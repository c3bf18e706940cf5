package movie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"popmovies/errs"
	"popmovies/pkg/logger"
	"popmovies/pkg/state"
)

const errorPrefix = "An exception occurred: "

type Option func(vs *ViewState)

// WithClock overrides the clock used to derive the current year.
func WithClock(now func() time.Time) Option {
	return func(vs *ViewState) {
		vs.now = now
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(vs *ViewState) {
		vs.logger = l
	}
}

// WithErrorReporter registers a hook that receives every fetch failure.
func WithErrorReporter(report func(error)) Option {
	return func(vs *ViewState) {
		vs.report = report
	}
}

// ViewState publishes this year's popular movies and the last fetch error.
// It fetches exactly once, in the background, as soon as it is created.
type ViewState struct {
	id     string
	repo   Repository
	now    func() time.Time
	logger *zap.SugaredLogger
	report func(error)

	popularMovies *state.Cell[[]Movie]
	errorMessage  *state.Cell[string]
	done          chan struct{}
}

// NewViewState starts the fetch immediately. ctx is the owning scope; once it
// is cancelled an in-flight fetch is abandoned without publishing anything.
func NewViewState(ctx context.Context, r Repository, opts ...Option) *ViewState {
	vs := &ViewState{
		id:            uuid.NewString(),
		repo:          r,
		now:           time.Now,
		logger:        logger.NOOPLogger,
		report:        func(error) {},
		popularMovies: state.NewCell([]Movie{}),
		errorMessage:  state.NewCell(""),
		done:          make(chan struct{}),
	}

	for _, fn := range opts {
		fn(vs)
	}

	go vs.fetchPopularMovies(ctx)

	return vs
}

func (vs *ViewState) ID() string {
	return vs.id
}

func (vs *ViewState) PopularMovies() state.Observable[[]Movie] {
	return vs.popularMovies
}

func (vs *ViewState) ErrorMessage() state.Observable[string] {
	return vs.errorMessage
}

// Done is closed once the fetch attempt has finished, whatever its outcome.
func (vs *ViewState) Done() <-chan struct{} {
	return vs.done
}

func (vs *ViewState) fetchPopularMovies(ctx context.Context) {
	defer close(vs.done)

	started := time.Now()
	movies, err := vs.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			vs.logger.Infow("fetch popular movies abandoned",
				"view_state_id", vs.id,
				"error", err,
			)
			return
		}

		vs.errorMessage.Set(errorPrefix + failureMessage(err))
		vs.logger.Errorw("fetch popular movies failed",
			"view_state_id", vs.id,
			"duration", time.Since(started),
			"error", err,
		)
		vs.report(err)
		return
	}

	year := vs.now().Format("2006")
	popular := Popular(movies, year)
	vs.popularMovies.Set(popular)

	vs.logger.Infow("popular movies updated",
		"view_state_id", vs.id,
		"year", year,
		"fetched", len(movies),
		"published", len(popular),
		"duration", time.Since(started),
	)
}

func (vs *ViewState) fetch(ctx context.Context) (movies []Movie, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return vs.repo.FetchPopularMovies(ctx)
}

// failureMessage keeps application messages readable and falls back to the
// raw error text for everything else.
func failureMessage(err error) string {
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
