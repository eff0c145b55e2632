// Command fake-server runs an in-memory tweeter service for local use of the
// tweeter CLI. It is seeded with @TestUser / password following 21 users.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/tweeter-client/internal/fakeserver"
	"github.com/Sternrassler/tweeter-client/pkg/logging"
	"github.com/Sternrassler/tweeter-client/pkg/metrics"
	"github.com/rs/zerolog"
)

func main() {
	port := getEnv("PORT", "8080")
	latency := getEnvDuration("LATENCY", 0)
	budget := getEnvInt("ERROR_BUDGET", fakeserver.DefaultErrorBudget)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: true,
		Color:  true,
		Output: os.Stderr,
	})

	srv, err := newServer(logger, latency, budget)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed fake server")
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("alias", fakeserver.DemoAlias).
		Dur("latency", latency).
		Msg("Starting fake tweeter server")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// newServer builds a seeded fake server that also serves /metrics.
func newServer(logger zerolog.Logger, latency time.Duration, budget int) (*fakeserver.Server, error) {
	srv := fakeserver.New(logger)
	if err := fakeserver.Seed(srv); err != nil {
		return nil, err
	}
	srv.SetLatency(latency)
	srv.SetErrorBudget(budget, fakeserver.DefaultBudgetReset)
	srv.Router().Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return srv, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}
