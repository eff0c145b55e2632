package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sternrassler/tweeter-client/pkg/pagination"
)

// FetchResponse is one scripted fetch outcome.
type FetchResponse[T any] struct {
	Page pagination.Page[T]
	Err  error
}

// ScriptedFetcher returns its scripted responses in order and records every
// request. When Gate is non-nil each Fetch waits for a value from it.
type ScriptedFetcher[T any] struct {
	mu        sync.Mutex
	responses []FetchResponse[T]
	requests  []pagination.Request[T]

	Gate chan struct{}
}

// NewScriptedFetcher creates a fetcher that answers with responses in order.
func NewScriptedFetcher[T any](responses ...FetchResponse[T]) *ScriptedFetcher[T] {
	return &ScriptedFetcher[T]{responses: responses}
}

// Fetch implements pagination.Fetcher.
func (f *ScriptedFetcher[T]) Fetch(ctx context.Context, req pagination.Request[T]) (pagination.Page[T], error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return pagination.Page[T]{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.responses) {
		return pagination.Page[T]{}, fmt.Errorf("testutil: no scripted response for request %d", n)
	}
	resp := f.responses[n-1]
	return resp.Page, resp.Err
}

// Requests returns a copy of the recorded requests.
func (f *ScriptedFetcher[T]) Requests() []pagination.Request[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pagination.Request[T](nil), f.requests...)
}

// Page is shorthand for a successful scripted response.
func Page[T any](more bool, items ...T) FetchResponse[T] {
	if items == nil {
		items = []T{}
	}
	return FetchResponse[T]{Page: pagination.Page[T]{Items: items, MorePages: more}}
}

// Failure is shorthand for a failed scripted response.
func Failure[T any](err error) FetchResponse[T] {
	return FetchResponse[T]{Err: err}
}
