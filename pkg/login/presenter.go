// Package login runs the login call off the caller's context and reports the
// result to a View, using the same dispatch pattern as pagination.
package login

import (
	"context"

	"github.com/Sternrassler/tweeter-client/pkg/dispatch"
	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/rs/zerolog"
)

// View receives the outcome of a login attempt. It is only called from the
// dispatcher's loop.
type View interface {
	LoginSuccessful(user model.User, token model.AuthToken)
	LoginUnsuccessful(message string)
}

// Service performs the remote login call.
type Service interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
}

// Presenter drives login attempts for one View.
type Presenter struct {
	view       View
	service    Service
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
}

// NewPresenter creates a login presenter.
func NewPresenter(view View, service Service, dispatcher *dispatch.Dispatcher, logger zerolog.Logger) *Presenter {
	return &Presenter{
		view:       view,
		service:    service,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "login").Logger(),
	}
}

// InitiateLogin starts a login attempt and returns immediately.
func (p *Presenter) InitiateLogin(username, password string) {
	req := model.LoginRequest{Username: username, Password: password}

	p.logger.Debug().Str("username", username).Msg("Initiating login")

	dispatch.Go(p.dispatcher, "login", func(ctx context.Context) (model.LoginResponse, error) {
		return p.service.Login(ctx, req)
	}, p.onResponse, p.onError)
}

func (p *Presenter) onResponse(resp model.LoginResponse) {
	if !resp.Success {
		p.logger.Warn().Str("reason", resp.Message).Msg("Login rejected")
		p.view.LoginUnsuccessful("Failed to login. " + resp.Message)
		return
	}

	p.logger.Info().Str("alias", resp.User.Alias).Msg("Login successful")
	p.view.LoginSuccessful(resp.User, resp.AuthToken)
}

func (p *Presenter) onError(err error) {
	p.logger.Error().Err(err).Msg("Login failed")
	p.view.LoginUnsuccessful("Failed to login because of exception: " + err.Error())
}
