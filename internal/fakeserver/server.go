// Package fakeserver is an in-process stand-in for the remote tweeter
// service. It serves /login and /getfollowing with the same wire format and
// error-budget headers as the real service.
package fakeserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/Sternrassler/tweeter-client/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Routes served by the fake service.
const (
	RouteLogin        = "/login"
	RouteGetFollowing = "/getfollowing"
	RouteHealth       = "/health"
)

// Defaults for a new server.
const (
	DefaultPageLimit   = 10
	DefaultErrorBudget = 100
	DefaultBudgetReset = 60 * time.Second
)

type account struct {
	user         model.User
	passwordHash []byte
}

// Server is the fake remote service.
type Server struct {
	mu        sync.Mutex
	accounts  map[string]account
	following map[string][]model.User
	tokens    map[string]string

	budget      int
	budgetLimit int
	budgetReset time.Duration
	resetAt     time.Time

	failRemaining int
	failStatus    int
	latency       time.Duration
	requests      map[string]int

	router *mux.Router
	logger zerolog.Logger
	now    func() time.Time
}

// New creates an empty server.
func New(logger zerolog.Logger) *Server {
	s := &Server{
		accounts:    make(map[string]account),
		following:   make(map[string][]model.User),
		tokens:      make(map[string]string),
		budget:      DefaultErrorBudget,
		budgetLimit: DefaultErrorBudget,
		budgetReset: DefaultBudgetReset,
		requests:    make(map[string]int),
		logger:      logger.With().Str("component", "fake-server").Logger(),
		now:         time.Now,
	}
	s.resetAt = s.now().Add(s.budgetReset)

	r := mux.NewRouter()
	r.HandleFunc(RouteHealth, healthHandler).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.countRequests, s.errorBudget, s.injectFailures)
	api.HandleFunc(RouteLogin, s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc(RouteGetFollowing, s.handleGetFollowing).Methods(http.MethodPost)

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the router so callers can mount extra routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// AddAccount registers user with a bcrypt hash of password.
func (s *Server) AddAccount(user model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Alias] = account{user: user, passwordHash: hash}
	return nil
}

// SetFollowing replaces the users alias follows, in page order.
func (s *Server) SetFollowing(alias string, followees []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.following[alias] = append([]model.User(nil), followees...)
}

// IssueToken creates a session token for alias without a password check.
func (s *Server) IssueToken(alias string) model.AuthToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = alias
	return model.AuthToken{Token: token}
}

// FailNext makes the next n API requests fail with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRemaining = n
	s.failStatus = status
}

// SetLatency delays every API response by d.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// SetErrorBudget sets the per-window error budget and resets the window.
func (s *Server) SetErrorBudget(limit int, reset time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgetLimit = limit
	s.budget = limit
	s.budgetReset = reset
	s.resetAt = s.now().Add(reset)
}

// RequestCount returns how many requests reached route.
func (s *Server) RequestCount(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		s.logger.Info().Str("alias", req.Username).Msg("Rejected login")
		writeJSON(w, http.StatusOK, model.LoginResponse{Success: false, Message: "Invalid alias or password"})
		return
	}

	token := s.IssueToken(acct.user.Alias)
	s.logger.Info().Str("alias", acct.user.Alias).Msg("Login successful")
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success:   true,
		User:      acct.user,
		AuthToken: token,
	})
}

func (s *Server) handleGetFollowing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, authorized := s.tokens[r.Header.Get("Authorization")]
	s.mu.Unlock()
	if !authorized {
		writeError(w, http.StatusUnauthorized, "invalid auth token")
		return
	}

	var req model.FollowingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed following request")
		return
	}
	if req.Limit <= 0 {
		req.Limit = DefaultPageLimit
	}

	s.mu.Lock()
	followees, known := s.following[req.FollowerAlias]
	s.mu.Unlock()

	if !known {
		writeJSON(w, http.StatusOK, model.FollowingResponse{
			Success: false,
			Message: "Unknown user: " + req.FollowerAlias,
		})
		return
	}

	page, more := pageAfter(followees, req.LastFolloweeAlias, req.Limit)
	s.logger.Debug().
		Str("subject", req.FollowerAlias).
		Str("cursor", req.LastFolloweeAlias).
		Int("items", len(page)).
		Bool("more_pages", more).
		Msg("Served following page")

	writeJSON(w, http.StatusOK, model.FollowingResponse{
		Success:      true,
		Followees:    page,
		HasMorePages: more,
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failRemaining > 0
		status := s.failStatus
		if fail {
			s.failRemaining--
		}
		s.mu.Unlock()

		if fail {
			s.logger.Warn().Str("endpoint", r.URL.Path).Int("status", status).Msg("Injected failure")
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorBudget charges every 4xx/5xx response against the window's budget
// and reports the remainder in the rate limit headers.
func (s *Server) errorBudget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&budgetWriter{ResponseWriter: w, server: s}, r)
	})
}

// charge records a response with status and returns the budget headers.
func (s *Server) charge(status int) (remaining int, resetSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.resetAt) {
		s.budget = s.budgetLimit
		s.resetAt = now.Add(s.budgetReset)
	}
	if status >= 400 && s.budget > 0 {
		s.budget--
	}
	return s.budget, int(math.Ceil(s.resetAt.Sub(now).Seconds()))
}

type budgetWriter struct {
	http.ResponseWriter
	server      *Server
	wroteHeader bool
}

func (b *budgetWriter) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.wroteHeader = true

	remaining, reset := b.server.charge(status)
	b.Header().Set(ratelimit.HeaderRemaining, strconv.Itoa(remaining))
	b.Header().Set(ratelimit.HeaderReset, strconv.Itoa(reset))
	b.ResponseWriter.WriteHeader(status)
}

func (b *budgetWriter) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.ResponseWriter.Write(p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
