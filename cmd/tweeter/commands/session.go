package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sternrassler/tweeter-client/internal/config"
	"github.com/Sternrassler/tweeter-client/pkg/client"
	"github.com/Sternrassler/tweeter-client/pkg/dispatch"
	"github.com/Sternrassler/tweeter-client/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// session owns the client and dispatch loop for one command invocation.
// Everything after start runs on the loop goroutine.
type session struct {
	cfg        *config.Config
	logger     zerolog.Logger
	out        io.Writer
	client     *client.Client
	redis      *redis.Client
	loop       *dispatch.Loop
	dispatcher *dispatch.Dispatcher

	err error
}

func newSession(cfg *config.Config, logger zerolog.Logger, out io.Writer) (*session, error) {
	clientCfg := client.DefaultConfig(cfg.Server.URL, cfg.Server.UserAgent)
	clientCfg.Timeout = cfg.Server.Timeout

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		clientCfg.Redis = rdb
	}

	c, err := client.New(clientCfg)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.SetLogger(logger.With().Str("component", "tweeter-client").Logger())

	loop := dispatch.NewLoop(logger)
	return &session{
		cfg:        cfg,
		logger:     logger,
		out:        out,
		client:     c,
		redis:      rdb,
		loop:       loop,
		dispatcher: dispatch.New(loop, dispatch.Config{Timeout: cfg.Pagination.FetchTimeout}, logger),
	}, nil
}

// finish stops the loop after the current task.
func (s *session) finish() {
	s.loop.Close()
}

// fail records the first error and stops the loop.
func (s *session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
	s.loop.Close()
}

// run posts start to the loop and drives it until finish or fail.
func (s *session) run(ctx context.Context, start func()) error {
	defer s.close()

	if err := s.loop.Post(start); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		err := s.loop.Run(runCtx)
		if errors.Is(err, dispatch.ErrLoopClosed) {
			return nil
		}
		return err
	})

	if s.cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return serveMetrics(runCtx, s.cfg.Metrics.Addr, s.logger)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return s.err
}

func (s *session) close() {
	s.loop.Close()
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger zerolog.Logger) error {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", addr).Msg("Serving metrics")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
