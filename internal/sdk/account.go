package sdk

import (
	"context"
	"net/http"
)

// User is the account the current session belongs to.
type User struct {
	ID           string         `json:"$id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Prefs        map[string]any `json:"prefs"`
	Registration string         `json:"registration"`
}

// Session is returned by a successful login.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Expire string `json:"expire"`
}

// Account wraps the account and session endpoints.
type Account struct {
	client *Client
}

func NewAccount(client *Client) *Account {
	return &Account{client: client}
}

// Create registers a new account. It does not log in.
func (a *Account) Create(ctx context.Context, userID, email, password, name string) (User, error) {
	var user User
	err := a.client.call(ctx, http.MethodPost, "/account", nil, map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}, &user)
	return user, err
}

func (a *Account) CreateEmailPasswordSession(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := a.client.call(ctx, http.MethodPost, "/account/sessions/email", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	return session, err
}

// Get returns the user of the current session.
func (a *Account) Get(ctx context.Context) (User, error) {
	var user User
	err := a.client.call(ctx, http.MethodGet, "/account", nil, nil, &user)
	return user, err
}

// DeleteSession revokes a session. Pass "current" for the active one.
func (a *Account) DeleteSession(ctx context.Context, sessionID string) error {
	return a.client.call(ctx, http.MethodDelete, "/account/sessions/"+sessionID, nil, nil, nil)
}
