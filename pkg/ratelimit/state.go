// Package ratelimit tracks the remote service's per-client error budget and
// gates requests before the budget runs out. The budget is reported through
// the X-RateLimit-Remaining and X-RateLimit-Reset response headers and is
// shared between client instances through Redis.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Response headers carrying the error budget.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Thresholds for gating decisions.
const (
	// ErrorThresholdCritical blocks requests when the budget falls below it.
	ErrorThresholdCritical = 5

	// ErrorThresholdWarning throttles requests when the budget falls below it.
	ErrorThresholdWarning = 20

	// ErrorThresholdHealthy marks the budget healthy at or above it.
	ErrorThresholdHealthy = 50
)

// DefaultErrorsRemaining is assumed until the service reports a budget.
const DefaultErrorsRemaining = 100

// State is the last known error budget.
type State struct {
	ErrorsRemaining int       `json:"errors_remaining"`
	ResetAt         time.Time `json:"reset_at"`
	LastUpdate      time.Time `json:"last_update"`
	IsHealthy       bool      `json:"is_healthy"`
}

// DefaultState returns the healthy state used when nothing is known.
func DefaultState(now time.Time) *State {
	return &State{
		ErrorsRemaining: DefaultErrorsRemaining,
		ResetAt:         now.Add(60 * time.Second),
		LastUpdate:      now,
		IsHealthy:       true,
	}
}

// ParseHeaders extracts a state from response headers. It returns false when
// the response carries no budget headers.
func ParseHeaders(headers http.Header, now time.Time) (*State, bool, error) {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil, false, nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return nil, false, fmt.Errorf("%s header missing", HeaderReset)
	}

	resetSeconds, err := strconv.Atoi(resetStr)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}

	state := &State{
		ErrorsRemaining: remain,
		ResetAt:         now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate:      now,
	}
	state.UpdateHealth()
	return state, true, nil
}

// IsStale reports whether the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock reports whether requests must be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.ErrorsRemaining < ErrorThresholdCritical
}

// NeedsThrottling reports whether requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.ErrorsRemaining < ErrorThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the time until the budget resets, or 0.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth recomputes IsHealthy from ErrorsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.ErrorsRemaining >= ErrorThresholdHealthy
}
