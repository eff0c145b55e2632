package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for error budget tracking.
var (
	errorsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_errors_remaining",
		Help: "Errors remaining in the current remote service budget window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_rate_limit_blocks_total",
		Help: "Total requests blocked because the error budget is critical",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_rate_limit_throttles_total",
		Help: "Total requests throttled because the error budget is low",
	})
)

// DefaultKey is the Redis hash holding the shared state.
const DefaultKey = "tweeter:rate_limit"

// Hash fields.
const (
	fieldErrorsRemaining = "errors_remaining"
	fieldResetAt         = "reset_at"
	fieldLastUpdate      = "last_update"
)

// Tracker stores the error budget in Redis and gates requests on it.
type Tracker struct {
	redis         *redis.Client
	key           string
	throttleDelay time.Duration
	logger        zerolog.Logger
}

// NewTracker creates a tracker backed by redisClient.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:         redisClient,
		key:           DefaultKey,
		throttleDelay: time.Second,
		logger:        logger,
	}
}

// SetThrottleDelay changes how long a throttled request waits.
func (t *Tracker) SetThrottleDelay(d time.Duration) {
	t.throttleDelay = d
}

// GetState returns the stored state, or the default healthy state when none
// is stored or the stored window has reset.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	fields, err := t.redis.HGetAll(ctx, t.key).Result()
	if err != nil {
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	if len(fields) == 0 {
		t.logger.Debug().Msg("No rate limit state in Redis, assuming healthy")
		return DefaultState(time.Now()), nil
	}

	remain, err := strconv.Atoi(fields[fieldErrorsRemaining])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldErrorsRemaining, err)
	}
	resetAt, err := strconv.ParseInt(fields[fieldResetAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldResetAt, err)
	}
	lastUpdate, err := time.Parse(time.RFC3339Nano, fields[fieldLastUpdate])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldLastUpdate, err)
	}

	state := &State{
		ErrorsRemaining: remain,
		ResetAt:         time.Unix(resetAt, 0),
		LastUpdate:      lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders stores the budget reported in a response. Responses
// without budget headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	state, ok, err := ParseHeaders(headers, time.Now())
	if err != nil || !ok {
		return err
	}

	pipe := t.redis.TxPipeline()
	pipe.HSet(ctx, t.key,
		fieldErrorsRemaining, state.ErrorsRemaining,
		fieldResetAt, state.ResetAt.Unix(),
		fieldLastUpdate, state.LastUpdate.Format(time.RFC3339Nano),
	)
	// The window's state is meaningless once it resets.
	pipe.ExpireAt(ctx, t.key, state.ResetAt.Add(time.Second))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	errorsRemaining.Set(float64(state.ErrorsRemaining))

	switch {
	case state.NeedsCriticalBlock():
		t.logger.Error().
			Int("errors_remaining", state.ErrorsRemaining).
			Time("reset_at", state.ResetAt).
			Msg("Error budget CRITICAL - requests will be blocked")
	case state.NeedsThrottling():
		t.logger.Warn().
			Int("errors_remaining", state.ErrorsRemaining).
			Time("reset_at", state.ResetAt).
			Msg("Error budget low - requests will be throttled")
	default:
		t.logger.Debug().
			Int("errors_remaining", state.ErrorsRemaining).
			Bool("is_healthy", state.IsHealthy).
			Msg("Error budget updated")
	}

	return nil
}

// ShouldAllowRequest reports whether a request may be sent. A low budget
// delays the caller by the throttle delay; a critical budget refuses.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("errors_remaining", state.ErrorsRemaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Error budget critical - blocking request")
		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("errors_remaining", state.ErrorsRemaining).
			Dur("delay", t.throttleDelay).
			Msg("Error budget low - throttling request")
		rateLimitThrottlesTotal.Inc()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(t.throttleDelay):
		}
	}

	return true, nil
}
