// Package client talks to the remote tweeter service: login and paged
// following lists, gated by the shared error budget.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/Sternrassler/tweeter-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Remote service endpoints.
const (
	EndpointLogin        = "/login"
	EndpointGetFollowing = "/getfollowing"
)

// Prometheus metrics for remote service calls.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_requests_total",
		Help: "Total remote service requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tweeter_request_duration_seconds",
		Help:    "Remote service request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_errors_total",
		Help: "Total remote service errors by class",
	}, []string{"class"})
)

// Limiter gates requests on the remote error budget.
type Limiter interface {
	ShouldAllowRequest(ctx context.Context) (bool, error)
	UpdateFromHeaders(ctx context.Context, headers http.Header) error
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the remote service, e.g. "http://localhost:8080".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// Redis enables the shared error budget when set.
	Redis *redis.Client
}

// DefaultConfig returns a default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// Client is the remote tweeter service client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "tweeter-client").Logger()

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     logger,
	}
	if cfg.Redis != nil {
		c.limiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return c, nil
}

// Login sends credentials to the service. Rejected credentials are reported
// through LoginResponse.Success, not as an error.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.post(ctx, EndpointLogin, model.AuthToken{}, req, &resp); err != nil {
		return model.LoginResponse{}, err
	}
	return resp, nil
}

// GetFollowees returns one page of the users req.FollowerAlias follows.
func (c *Client) GetFollowees(ctx context.Context, token model.AuthToken, req model.FollowingRequest) (model.FollowingResponse, error) {
	if token.IsZero() {
		return model.FollowingResponse{}, ErrUnauthenticated
	}

	var resp model.FollowingResponse
	if err := c.post(ctx, EndpointGetFollowing, token, req, &resp); err != nil {
		return model.FollowingResponse{}, err
	}

	if !resp.Success {
		errorsTotal.WithLabelValues(string(ErrorClassRemote)).Inc()
		return model.FollowingResponse{}, &ServiceError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassRemote,
			Message:    resp.Message,
		}
	}

	return resp, nil
}

// post sends in as JSON and decodes the JSON answer into out.
func (c *Client) post(ctx context.Context, endpoint string, token model.AuthToken, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !token.IsZero() {
		req.Header.Set("Authorization", token.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassProtocol)).Inc()
		return &ServiceError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassProtocol,
			Message:    "malformed response body",
			Err:        err,
		}
	}

	return nil
}

// Do performs an HTTP request with error budget gating, metrics and error
// classification. Non-2xx responses are returned as *ServiceError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.limiter != nil {
		allowed, err := c.limiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().Str("endpoint", endpoint).Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, &ServiceError{
				ErrorClass: ErrorClassRateLimit,
				Message:    "request not sent",
				Err:        ErrRateLimited,
			}
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &ServiceError{
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if c.limiter != nil {
		if err := c.limiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		errClass := c.classifyError(resp, nil)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Request error")

		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    errorMessage(resp),
		}
	}

	return resp, nil
}

// classifyError categorizes a failed request.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// errorMessage extracts {"message": "..."} from an error body, falling back
// to the status text.
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return resp.Status
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLimiter replaces the error budget limiter. A nil limiter disables gating.
func (c *Client) SetLimiter(limiter Limiter) {
	c.limiter = limiter
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}
