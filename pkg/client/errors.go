package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRateLimited is returned when the shared error budget blocks a request.
	ErrRateLimited = errors.New("request blocked: error budget critical")

	// ErrUnauthenticated is returned when a call needs an auth token and none was given.
	ErrUnauthenticated = errors.New("auth token required")
)

// ErrorClass represents a classification of failed calls.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and locally blocked requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassProtocol represents malformed responses.
	ErrorClassProtocol ErrorClass = "protocol"

	// ErrorClassRemote represents a well-formed response with success=false.
	ErrorClassRemote ErrorClass = "remote"
)

// ServiceError is a failed call to the remote service.
type ServiceError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tweeter %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("tweeter %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of err if it is a *ServiceError, or "".
func ClassOf(err error) ErrorClass {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.ErrorClass
	}
	return ""
}
