package dispatch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Loop is a single-consumer task queue. All tasks run sequentially on the
// goroutine calling Run or RunOnce.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake   chan struct{}
	done   chan struct{}
	logger zerolog.Logger
}

// NewLoop creates an empty loop.
func NewLoop(logger zerolog.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "dispatch-loop").Logger(),
	}
}

// Post enqueues a task. It never blocks and is safe to call from any
// goroutine, including from a task running on the loop.
func (l *Loop) Post(task func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunOnce waits for the next task and runs it on the calling goroutine.
func (l *Loop) RunOnce(ctx context.Context) error {
	for {
		task, err := l.next()
		if err != nil {
			return err
		}
		if task != nil {
			task()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrLoopClosed
		case <-l.wake:
		}
	}
}

// Run drains the queue until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug().Msg("Loop started")
	for {
		if err := l.RunOnce(ctx); err != nil {
			l.logger.Debug().Err(err).Msg("Loop stopped")
			return err
		}
	}
}

// Close discards queued tasks and rejects new ones.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if n := len(l.queue); n > 0 {
		l.logger.Debug().Int("discarded", n).Msg("Closing loop with pending tasks")
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}

func (l *Loop) next() (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrLoopClosed
	}
	if len(l.queue) == 0 {
		return nil, nil
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, nil
}
