package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseHeaders(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name            string
		remainHeader    string
		resetHeader     string
		expectOK        bool
		expectError     bool
		expectedRemain  int
		expectedHealthy bool
	}{
		{
			name:            "healthy state",
			remainHeader:    "100",
			resetHeader:     "60",
			expectOK:        true,
			expectedRemain:  100,
			expectedHealthy: true,
		},
		{
			name:            "warning state",
			remainHeader:    "15",
			resetHeader:     "30",
			expectOK:        true,
			expectedRemain:  15,
			expectedHealthy: false,
		},
		{
			name:            "critical state",
			remainHeader:    "3",
			resetHeader:     "45",
			expectOK:        true,
			expectedRemain:  3,
			expectedHealthy: false,
		},
		{
			name:            "at healthy threshold",
			remainHeader:    "50",
			resetHeader:     "60",
			expectOK:        true,
			expectedRemain:  50,
			expectedHealthy: true,
		},
		{
			name:     "no budget headers",
			expectOK: false,
		},
		{
			name:         "invalid remaining",
			remainHeader: "lots",
			resetHeader:  "60",
			expectError:  true,
		},
		{
			name:         "missing reset",
			remainHeader: "10",
			expectError:  true,
		},
		{
			name:         "invalid reset",
			remainHeader: "10",
			resetHeader:  "soon",
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.remainHeader != "" {
				headers.Set(HeaderRemaining, tt.remainHeader)
			}
			if tt.resetHeader != "" {
				headers.Set(HeaderReset, tt.resetHeader)
			}

			state, ok, err := ParseHeaders(headers, now)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ok != tt.expectOK {
				t.Fatalf("ok = %v, want %v", ok, tt.expectOK)
			}
			if !ok {
				return
			}

			if state.ErrorsRemaining != tt.expectedRemain {
				t.Errorf("ErrorsRemaining = %d, want %d", state.ErrorsRemaining, tt.expectedRemain)
			}
			if state.IsHealthy != tt.expectedHealthy {
				t.Errorf("IsHealthy = %v, want %v", state.IsHealthy, tt.expectedHealthy)
			}
			if !state.LastUpdate.Equal(now) {
				t.Errorf("LastUpdate = %v, want %v", state.LastUpdate, now)
			}
		})
	}
}

func TestUpdateFromHeaders_WithoutRedisAccess(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())

	tests := []struct {
		name         string
		remainHeader string
		resetHeader  string
		shouldError  bool
	}{
		{
			name:        "both headers missing",
			shouldError: false,
		},
		{
			name:        "missing remaining header",
			resetHeader: "60",
			shouldError: false,
		},
		{
			name:         "invalid remaining header",
			remainHeader: "invalid",
			resetHeader:  "60",
			shouldError:  true,
		},
		{
			name:         "invalid reset header",
			remainHeader: "100",
			resetHeader:  "invalid",
			shouldError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.remainHeader != "" {
				headers.Set(HeaderRemaining, tt.remainHeader)
			}
			if tt.resetHeader != "" {
				headers.Set(HeaderReset, tt.resetHeader)
			}

			err := tracker.UpdateFromHeaders(context.Background(), headers)

			if tt.shouldError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultState(t *testing.T) {
	now := time.Now()
	state := DefaultState(now)

	if state.ErrorsRemaining != DefaultErrorsRemaining {
		t.Errorf("ErrorsRemaining = %d, want %d", state.ErrorsRemaining, DefaultErrorsRemaining)
	}
	if !state.IsHealthy {
		t.Error("Default state should be healthy")
	}
	if state.NeedsCriticalBlock() || state.NeedsThrottling() {
		t.Error("Default state should neither block nor throttle")
	}
}
