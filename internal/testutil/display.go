package testutil

import (
	"sync"

	"github.com/Sternrassler/tweeter-client/pkg/model"
)

// EventKind identifies a display or view callback.
type EventKind string

const (
	EventSetLoading        EventKind = "setLoading"
	EventAddItems          EventKind = "addItems"
	EventDisplayError      EventKind = "displayError"
	EventLoginSuccessful   EventKind = "loginSuccessful"
	EventLoginUnsuccessful EventKind = "loginUnsuccessful"
)

// Event is one recorded callback.
type Event[T any] struct {
	Kind    EventKind
	Loading bool
	Items   []T
	Message string
	User    model.User
	Token   model.AuthToken
}

// RecordingDisplay records every call it receives, in order. OnEvent, when
// set, runs after each call is recorded.
type RecordingDisplay[T any] struct {
	mu      sync.Mutex
	events  []Event[T]
	OnEvent func(Event[T])
}

// SetLoading records a loading change.
func (d *RecordingDisplay[T]) SetLoading(loading bool) {
	d.record(Event[T]{Kind: EventSetLoading, Loading: loading})
}

// AddItems records a batch.
func (d *RecordingDisplay[T]) AddItems(items []T) {
	d.record(Event[T]{Kind: EventAddItems, Items: items})
}

// DisplayError records an error message.
func (d *RecordingDisplay[T]) DisplayError(message string) {
	d.record(Event[T]{Kind: EventDisplayError, Message: message})
}

// LoginSuccessful records a successful login.
func (d *RecordingDisplay[T]) LoginSuccessful(user model.User, token model.AuthToken) {
	d.record(Event[T]{Kind: EventLoginSuccessful, User: user, Token: token})
}

// LoginUnsuccessful records a failed login.
func (d *RecordingDisplay[T]) LoginUnsuccessful(message string) {
	d.record(Event[T]{Kind: EventLoginUnsuccessful, Message: message})
}

// Events returns a copy of the recorded events.
func (d *RecordingDisplay[T]) Events() []Event[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event[T](nil), d.events...)
}

// Kinds returns the kinds of the recorded events, in order.
func (d *RecordingDisplay[T]) Kinds() []EventKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]EventKind, len(d.events))
	for i, e := range d.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (d *RecordingDisplay[T]) Count(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears the recorded events.
func (d *RecordingDisplay[T]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
}

func (d *RecordingDisplay[T]) record(e Event[T]) {
	d.mu.Lock()
	d.events = append(d.events, e)
	hook := d.OnEvent
	d.mu.Unlock()

	if hook != nil {
		hook(e)
	}
}
