// Package testutil provides fixtures and recording fakes for tests.
package testutil

import (
	"fmt"

	"github.com/Sternrassler/tweeter-client/internal/fakeserver"
	"github.com/Sternrassler/tweeter-client/pkg/model"
)

// Image URLs used by the fixture users.
const (
	MaleImageURL   = fakeserver.MaleImageURL
	FemaleImageURL = fakeserver.FemaleImageURL
)

// Users returns the 21 fixture users in a fixed order. Users()[0] is U1.
func Users() []model.User {
	return fakeserver.FakeUsers()
}

// Range returns fixture users U<from> through U<to> inclusive (1-based).
func Range(from, to int) []model.User {
	users := Users()
	if from < 1 || to > len(users) || from > to {
		panic(fmt.Sprintf("testutil: invalid range %d..%d", from, to))
	}
	return users[from-1 : to]
}
