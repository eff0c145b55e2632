package pagination

import (
	"context"

	"github.com/Sternrassler/tweeter-client/pkg/dispatch"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds coordinator configuration.
type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int

	// Task names the dispatched fetch in metrics and logs.
	Task string
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
		Task:     "fetch-page",
	}
}

// Coordinator serializes page fetches for one subject and reports their
// outcomes to a Display.
type Coordinator[T any] struct {
	subject    string
	fetcher    Fetcher[T]
	display    Display[T]
	dispatcher *dispatch.Dispatcher
	config     Config
	logger     zerolog.Logger

	cursor    Cursor[T]
	morePages bool
	inFlight  bool
}

// NewCoordinator creates a coordinator with an absent cursor and more pages
// assumed.
func NewCoordinator[T any](subject string, fetcher Fetcher[T], display Display[T], dispatcher *dispatch.Dispatcher, config Config) *Coordinator[T] {
	if fetcher == nil || display == nil || dispatcher == nil {
		panic("pagination: fetcher, display and dispatcher are required")
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.Task == "" {
		config.Task = "fetch-page"
	}

	return &Coordinator[T]{
		subject:    subject,
		fetcher:    fetcher,
		display:    display,
		dispatcher: dispatcher,
		config:     config,
		logger:     log.With().Str("component", "pagination").Str("subject", subject).Logger(),
		morePages:  true,
	}
}

// SetLogger replaces the coordinator's logger.
func (c *Coordinator[T]) SetLogger(logger zerolog.Logger) {
	c.logger = logger.With().Str("subject", c.subject).Logger()
}

// Subject returns the subject whose list is paged.
func (c *Coordinator[T]) Subject() string {
	return c.subject
}

// State returns a snapshot of the continuation state.
func (c *Coordinator[T]) State() State[T] {
	return State[T]{
		Cursor:    c.cursor,
		MorePages: c.morePages,
		InFlight:  c.inFlight,
	}
}

// RequestMore fetches the next page unless one is already in flight or the
// list is exhausted. It never blocks.
func (c *Coordinator[T]) RequestMore() {
	if c.inFlight {
		requestMoreSkippedTotal.WithLabelValues("in_flight").Inc()
		c.logger.Debug().Msg("Fetch already in flight, ignoring request")
		return
	}
	if !c.morePages {
		requestMoreSkippedTotal.WithLabelValues("exhausted").Inc()
		c.logger.Debug().Msg("No more pages, ignoring request")
		return
	}

	c.inFlight = true
	c.display.SetLoading(true)

	req := Request[T]{
		Subject:  c.subject,
		PageSize: c.config.PageSize,
		Cursor:   c.cursor,
	}

	c.logger.Debug().
		Int("page_size", req.PageSize).
		Bool("first_page", req.Cursor.IsZero()).
		Msg("Requesting page")

	dispatch.Go(c.dispatcher, c.config.Task, func(ctx context.Context) (Page[T], error) {
		return c.fetcher.Fetch(ctx, req)
	}, c.onFetchSuccess, c.onFetchFailure)
}

func (c *Coordinator[T]) onFetchSuccess(page Page[T]) {
	if n := len(page.Items); n > 0 {
		c.cursor = CursorAt(page.Items[n-1])
	}
	if !page.MorePages {
		c.morePages = false
	}

	pagesFetchedTotal.Inc()
	pageItemsTotal.Add(float64(len(page.Items)))

	c.logger.Info().
		Int("items", len(page.Items)).
		Bool("more_pages", c.morePages).
		Msg("Page received")

	c.display.SetLoading(false)
	c.display.AddItems(page.Items)

	// Released last so RequestMore from a display callback stays a no-op.
	c.inFlight = false
}

func (c *Coordinator[T]) onFetchFailure(err error) {
	pageFailuresTotal.Inc()

	c.logger.Warn().
		Err(err).
		Bool("first_page", c.cursor.IsZero()).
		Msg("Page fetch failed")

	c.display.SetLoading(false)
	c.display.DisplayError(errorMessage(err))

	c.inFlight = false
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
