package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds dispatcher configuration.
type Config struct {
	// Timeout bounds each unit of work. Zero means no deadline.
	Timeout time.Duration
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 15 * time.Second,
	}
}

// Result is the tagged outcome of one unit of work.
type Result[T any] struct {
	Value T
	Err   error
}

// Dispatcher runs work on worker goroutines and routes outcomes to a Loop.
type Dispatcher struct {
	loop   *Loop
	config Config
	logger zerolog.Logger
}

// New creates a dispatcher delivering onto loop.
func New(loop *Loop, config Config, logger zerolog.Logger) *Dispatcher {
	if loop == nil {
		panic("dispatch loop cannot be nil")
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	return &Dispatcher{
		loop:   loop,
		config: config,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Loop returns the loop outcomes are delivered to.
func (d *Dispatcher) Loop() *Loop {
	return d.loop
}

// Go runs work on a new goroutine and posts exactly one of onSuccess or
// onFailure to the dispatcher's loop. It returns immediately.
func Go[T any](d *Dispatcher, task string, work func(ctx context.Context) (T, error), onSuccess func(T), onFailure func(error)) {
	dispatchTotal.WithLabelValues(task).Inc()
	dispatchInFlight.Inc()

	go func() {
		defer dispatchInFlight.Dec()

		start := time.Now()
		result := run(d.workContext, work)
		dispatchDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())

		outcome := "success"
		switch {
		case errors.Is(result.Err, ErrPanic):
			outcome = "panic"
			d.logger.Error().
				Err(result.Err).
				Str("task", task).
				Msg("Recovered panic in dispatched work")
		case result.Err != nil:
			outcome = "failure"
			d.logger.Debug().
				Err(result.Err).
				Str("task", task).
				Dur("duration", time.Since(start)).
				Msg("Dispatched work failed")
		}

		err := d.loop.Post(func() {
			if result.Err != nil {
				onFailure(result.Err)
				return
			}
			onSuccess(result.Value)
		})
		if err != nil {
			outcome = "dropped"
			d.logger.Warn().
				Err(err).
				Str("task", task).
				Msg("Dropping outcome, loop is closed")
		}
		dispatchOutcomesTotal.WithLabelValues(task, outcome).Inc()
	}()
}

// workContext returns the context handed to a unit of work.
func (d *Dispatcher) workContext() (context.Context, context.CancelFunc) {
	if d.config.Timeout > 0 {
		return context.WithTimeout(context.Background(), d.config.Timeout)
	}
	return context.WithCancel(context.Background())
}

// run executes work, converting a panic into a failure.
func run[T any](newContext func() (context.Context, context.CancelFunc), work func(ctx context.Context) (T, error)) (result Result[T]) {
	ctx, cancel := newContext()
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = Result[T]{Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	value, err := work(ctx)
	if err != nil {
		return Result[T]{Err: err}
	}
	return Result[T]{Value: value}
}
