// Package gateway adapts domain calls onto the backend SDK and normalizes every
// failure into a result.Result.
package gateway

import (
	"context"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"go.uber.org/zap"
)

const currentSession = "current"

// AccountAPI is the account surface of the backend SDK.
type AccountAPI interface {
	Create(ctx context.Context, userID, email, password, name string) (sdk.User, error)
	CreateEmailPasswordSession(ctx context.Context, email, password string) (sdk.Session, error)
	Get(ctx context.Context) (sdk.User, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type AuthGatewayConfig struct {
	Account    AccountAPI
	Logger     *zap.Logger
	IDProvider func() string
}

// AuthGateway registers, logs in and out, and reports the current user.
type AuthGateway struct {
	account AccountAPI
	logger  *zap.Logger
	newID   func() string
}

func NewAuthGateway(cfg AuthGatewayConfig) *AuthGateway {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := cfg.IDProvider
	if newID == nil {
		newID = sdk.UniqueID
	}
	return &AuthGateway{account: cfg.Account, logger: logger, newID: newID}
}

// Register creates an account under a fresh id. Callers validate emptiness.
func (g *AuthGateway) Register(ctx context.Context, email, password string) result.Result[sdk.User] {
	user, err := g.account.Create(ctx, g.newID(), email, password, "")
	if err != nil {
		g.logger.Error("error registering account", zap.Error(err))
		return result.Err[sdk.User](err.Error())
	}
	return result.Ok(user)
}

func (g *AuthGateway) Login(ctx context.Context, email, password string) result.Result[sdk.Session] {
	session, err := g.account.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		g.logger.Error("error logging in", zap.Error(err))
		return result.Err[sdk.Session](err.Error())
	}
	return result.Ok(session)
}

// CurrentUser returns nil when there is no valid session.
func (g *AuthGateway) CurrentUser(ctx context.Context) *sdk.User {
	user, err := g.account.Get(ctx)
	if err != nil {
		g.logger.Debug("no current user", zap.Error(err))
		return nil
	}
	return &user
}

// Logout revokes the current session. Failures are logged and dropped.
func (g *AuthGateway) Logout(ctx context.Context) {
	if err := g.account.DeleteSession(ctx, currentSession); err != nil {
		g.logger.Warn("error logging out", zap.Error(err))
	}
}
