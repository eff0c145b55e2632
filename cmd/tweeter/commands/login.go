package commands

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/tweeter-client/pkg/login"
	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/spf13/cobra"
)

// credentials are the login flags shared by login and following.
type credentials struct {
	alias    string
	password string
}

func (c *credentials) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.alias, "alias", "u", "", "account alias, e.g. @TestUser")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("alias")
	_ = cmd.MarkFlagRequired("password")
}

func newLoginCmd(opts *options) *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the account's auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts.cfg, opts.logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			view := &console{out: s.out}
			view.onLogin = func(user model.User, token model.AuthToken) {
				fmt.Fprintf(s.out, "Logged in as %s\n", user.Alias)
				fmt.Fprintf(s.out, "Auth token: %s\n", token.Token)
				s.finish()
			}
			view.onLoginFailed = func(message string) {
				s.fail(errors.New(message))
			}

			presenter := login.NewPresenter(view, s.client, s.dispatcher, s.logger)
			return s.run(cmd.Context(), func() {
				presenter.InitiateLogin(creds.alias, creds.password)
			})
		},
	}
	creds.register(cmd)

	return cmd
}
