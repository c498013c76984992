// Package controller orchestrates gateways and state containers into the
// user-facing flows of the client.
package controller

import (
	"context"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"go.uber.org/zap"
)

// AuthGateway is what the auth flows need from the auth gateway.
type AuthGateway interface {
	Register(ctx context.Context, email, password string) result.Result[sdk.User]
	Login(ctx context.Context, email, password string) result.Result[sdk.Session]
	CurrentUser(ctx context.Context) *sdk.User
	Logout(ctx context.Context)
}

// AuthStatus is derived from the session state.
type AuthStatus int

const (
	StatusAnonymous AuthStatus = iota
	StatusChecking
	StatusAuthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

type AuthController struct {
	gateway AuthGateway
	session *state.SessionState
	logger  *zap.Logger
}

func NewAuthController(gateway AuthGateway, session *state.SessionState, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{gateway: gateway, session: session, logger: logger}
}

func (c *AuthController) Status() AuthStatus {
	snapshot := c.session.Snapshot()
	switch {
	case snapshot.Loading:
		return StatusChecking
	case snapshot.User != nil:
		return StatusAuthenticated
	default:
		return StatusAnonymous
	}
}

// CheckUser refreshes the session user from the backend.
func (c *AuthController) CheckUser(ctx context.Context) {
	c.session.SetLoading(true)
	user := c.gateway.CurrentUser(ctx)
	c.session.SetLoading(false)
	c.session.SetUser(user)
	c.logger.Debug("session checked", zap.Stringer("status", c.Status()))
}

// Login leaves the session user untouched on failure.
func (c *AuthController) Login(ctx context.Context, email, password string) result.Result[bool] {
	c.session.SetLoading(true)
	session := c.gateway.Login(ctx, email, password)
	c.session.SetLoading(false)
	return result.Match(session,
		func(sdk.Session) result.Result[bool] {
			c.CheckUser(ctx)
			return result.Ok(true)
		},
		func(string) result.Result[bool] { return result.Propagate[bool](session) },
	)
}

// Register signs the new account in with the same credentials.
func (c *AuthController) Register(ctx context.Context, email, password string) result.Result[bool] {
	c.session.SetLoading(true)
	registered := c.gateway.Register(ctx, email, password)
	c.session.SetLoading(false)
	return result.Match(registered,
		func(sdk.User) result.Result[bool] { return c.Login(ctx, email, password) },
		func(string) result.Result[bool] { return result.Propagate[bool](registered) },
	)
}

func (c *AuthController) Logout(ctx context.Context) {
	c.session.SetLoading(true)
	c.gateway.Logout(ctx)
	c.session.SetLoading(false)
	c.session.SetUser(nil)
	c.CheckUser(ctx)
}
