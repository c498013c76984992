package controller

import (
	"context"
	"testing"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

func TestStatusFollowsSessionState(t *testing.T) {
	session := state.NewSessionState()
	controller := NewAuthController(newFakeAuthGateway(), session, nil)
	require.Equal(t, StatusChecking, controller.Status())

	controller.CheckUser(context.Background())
	require.Equal(t, StatusAnonymous, controller.Status())

	session.SetUser(&sdk.User{ID: "user-1"})
	require.Equal(t, StatusAuthenticated, controller.Status())
	require.Equal(t, "authenticated", controller.Status().String())
}

func TestRegisterLogsIn(t *testing.T) {
	session := state.NewSessionState()
	controller := NewAuthController(newFakeAuthGateway(), session, nil)

	registered := controller.Register(context.Background(), "a@example.com", "password1")
	require.True(t, registered.IsOk())
	require.Equal(t, "a@example.com", session.User().Email)
	require.False(t, session.Loading())
}

func TestRegisterReportsCheckingWhileCreatingAccount(t *testing.T) {
	gateway := newFakeAuthGateway()
	session := state.NewSessionState()
	session.SetLoading(false)
	controller := NewAuthController(gateway, session, nil)

	var statusDuringRegister AuthStatus
	gateway.onRegister = func() { statusDuringRegister = controller.Status() }

	gateway.registerErr = "A user with the same email already exists"
	require.True(t, controller.Register(context.Background(), "a@example.com", "password1").IsErr())
	require.Equal(t, StatusChecking, statusDuringRegister)
	require.False(t, session.Loading())
	require.Equal(t, StatusAnonymous, controller.Status())
}

func TestRegisterFailureSkipsLogin(t *testing.T) {
	gateway := newFakeAuthGateway()
	gateway.registerErr = "A user with the same email already exists"
	session := state.NewSessionState()
	controller := NewAuthController(gateway, session, nil)

	registered := controller.Register(context.Background(), "a@example.com", "password1")
	require.True(t, registered.IsErr())
	require.Equal(t, "A user with the same email already exists", registered.Message())
	require.Nil(t, session.User())
}

func TestLoginFailureKeepsUser(t *testing.T) {
	gateway := newFakeAuthGateway()
	session := state.NewSessionState()
	existing := &sdk.User{ID: "user-1", Email: "old@example.com"}
	session.SetUser(existing)
	controller := NewAuthController(gateway, session, nil)

	loggedIn := controller.Login(context.Background(), "missing@example.com", "password1")
	require.True(t, loggedIn.IsErr())
	require.Equal(t, "old@example.com", session.User().Email)
	require.False(t, session.Loading())
}

func TestLogoutClearsUser(t *testing.T) {
	gateway := newFakeAuthGateway()
	session := state.NewSessionState()
	controller := NewAuthController(gateway, session, nil)
	require.True(t, controller.Register(context.Background(), "a@example.com", "password1").IsOk())

	controller.Logout(context.Background())
	require.Nil(t, session.User())
	require.Equal(t, 1, gateway.logoutCalls)
	require.Equal(t, StatusAnonymous, controller.Status())
}
