package commands

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/tweeter-client/pkg/client"
	"github.com/Sternrassler/tweeter-client/pkg/login"
	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/Sternrassler/tweeter-client/pkg/pagination"
	"github.com/spf13/cobra"
)

func newFollowingCmd(opts *options) *cobra.Command {
	creds := &credentials{}
	var (
		subject string
		pages   int
	)

	cmd := &cobra.Command{
		Use:   "following",
		Short: "List the users an account follows, page by page",
		Long: `following logs in and pages through the users the subject follows.
Each page is requested only after the previous one has been shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 0 {
				return fmt.Errorf("--pages must not be negative")
			}

			s, err := newSession(opts.cfg, opts.logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var (
				coord   *pagination.Coordinator[model.User]
				fetched int
			)

			view := &console{out: s.out}
			view.onLogin = func(user model.User, token model.AuthToken) {
				alias := subject
				if alias == "" {
					alias = user.Alias
				}
				fmt.Fprintf(s.out, "Following of %s:\n", alias)

				coord = pagination.NewCoordinator[model.User](
					alias,
					client.NewFollowingFetcher(s.client, token),
					view,
					s.dispatcher,
					pagination.Config{PageSize: s.cfg.Pagination.PageSize, Task: "get-following"},
				)
				coord.SetLogger(s.logger)
				coord.RequestMore()
			}
			view.onItems = func(items []model.User) {
				fetched++
				if !coord.State().MorePages || (pages > 0 && fetched >= pages) {
					fmt.Fprintf(s.out, "%d users in %d pages\n", view.shown, fetched)
					s.finish()
					return
				}
				// Posted rather than called: the coordinator is still
				// in flight until this callback returns.
				if err := s.loop.Post(coord.RequestMore); err != nil {
					s.fail(err)
				}
			}
			view.onError = func(message string) {
				s.fail(errors.New(message))
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
	cmd.Flags().StringVar(&subject, "subject", "", "alias whose following list to show (default: the logged-in user)")
	cmd.Flags().IntVar(&pages, "pages", 0, "stop after this many pages (0 fetches all)")
	cmd.Flags().Int("page-size", 0, "users per page")
	cmd.Flags().Duration("fetch-timeout", 0, "timeout for one page fetch")

	return cmd
}
