package commands

import (
	"fmt"
	"io"

	"github.com/Sternrassler/tweeter-client/pkg/model"
)

// console prints login and pagination callbacks and forwards them to the
// command's hooks. It is only used from the loop goroutine.
type console struct {
	out   io.Writer
	shown int

	onLogin       func(user model.User, token model.AuthToken)
	onLoginFailed func(message string)
	onItems       func(items []model.User)
	onError       func(message string)
}

func (c *console) SetLoading(loading bool) {
	if loading {
		fmt.Fprintln(c.out, "Loading...")
	}
}

func (c *console) AddItems(items []model.User) {
	for _, u := range items {
		c.shown++
		fmt.Fprintf(c.out, "%3d. %s\n", c.shown, u)
	}
	if c.onItems != nil {
		c.onItems(items)
	}
}

func (c *console) DisplayError(message string) {
	fmt.Fprintln(c.out, message)
	if c.onError != nil {
		c.onError(message)
	}
}

func (c *console) LoginSuccessful(user model.User, token model.AuthToken) {
	fmt.Fprintf(c.out, "Hello, %s\n", user.Name())
	if c.onLogin != nil {
		c.onLogin(user, token)
	}
}

func (c *console) LoginUnsuccessful(message string) {
	fmt.Fprintln(c.out, message)
	if c.onLoginFailed != nil {
		c.onLoginFailed(message)
	}
}
