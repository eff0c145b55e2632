// Package model defines the domain types exchanged with the remote
// tweeter service.
package model

import "fmt"

// User is a tweeter account as returned by the remote service.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Alias     string `json:"alias"`
	ImageURL  string `json:"imageUrl"`

	// ImageBytes is filled in later by an image loader, never by the service.
	ImageBytes []byte `json:"-"`
}

// NewUser creates a user whose alias is derived from the name ("@FirstLast").
func NewUser(firstName, lastName, imageURL string) User {
	return NewUserWithAlias(firstName, lastName, fmt.Sprintf("@%s%s", firstName, lastName), imageURL)
}

// NewUserWithAlias creates a user with an explicit alias.
func NewUserWithAlias(firstName, lastName, alias, imageURL string) User {
	return User{
		FirstName: firstName,
		LastName:  lastName,
		Alias:     alias,
		ImageURL:  imageURL,
	}
}

// Name returns the display name.
func (u User) Name() string {
	return u.FirstName + " " + u.LastName
}

// String implements fmt.Stringer.
func (u User) String() string {
	return fmt.Sprintf("%s (%s)", u.Name(), u.Alias)
}

// AuthToken identifies an authenticated session.
type AuthToken struct {
	Token string `json:"token"`
}

// IsZero reports whether the token is empty.
func (t AuthToken) IsZero() bool {
	return t.Token == ""
}
