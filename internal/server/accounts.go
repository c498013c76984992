package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/auth"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createAccountRequest struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type emailSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountPayload struct {
	ID           string         `json:"$id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Prefs        map[string]any `json:"prefs"`
	Registration string         `json:"registration"`
}

type sessionPayload struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Expire string `json:"expire"`
}

func newAccountPayload(account users.Account) accountPayload {
	return accountPayload{
		ID:           account.UserID,
		Email:        account.Email,
		Name:         account.Name,
		Prefs:        account.Prefs(),
		Registration: account.CreatedAt.UTC().Format(timestampLayout),
	}
}

func (h *httpHandler) handleCreateAccount(c *gin.Context) {
	var request createAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(request.Email) == "" || request.Password == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), users.RegisterRequest{
		UserID:   request.UserID,
		Email:    request.Email,
		Password: request.Password,
		Name:     request.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrAccountExists):
			respondError(c, http.StatusConflict, "user_already_exists", "an account with this email or id already exists")
		case errors.Is(err, users.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, "password_invalid", "password must be between 8 and 72 characters")
		case errors.Is(err, users.ErrInvalidAccount):
			respondError(c, http.StatusBadRequest, "invalid_request", "email or user id is invalid")
		default:
			h.logger.Error("account registration failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "account_create_failed", "failed to create account")
		}
		return
	}

	c.JSON(http.StatusCreated, newAccountPayload(account))
}

func (h *httpHandler) handleCreateEmailSession(c *gin.Context) {
	var request emailSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(request.Email) == "" || request.Password == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.logger.Info("login rejected", zap.Error(err))
			respondError(c, http.StatusUnauthorized, "user_invalid_credentials", "invalid credentials, please check the email and password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "session_create_failed", "failed to create session")
		return
	}

	session, err := h.accounts.StartSession(c.Request.Context(), account)
	if err != nil {
		h.logger.Error("session start failed", zap.String("user_id", account.UserID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "session_create_failed", "failed to create session")
		return
	}

	token, expiresAt, err := h.tokens.IssueSessionToken(c.Request.Context(), auth.SessionSubject{
		UserID:    account.UserID,
		UserEmail: account.Email,
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("session token issue failed", zap.String("user_id", account.UserID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "session_create_failed", "failed to create session")
		return
	}

	h.setSessionCookie(c, token, expiresAt)
	c.JSON(http.StatusCreated, sessionPayload{
		ID:     session.SessionID,
		UserID: account.UserID,
		Expire: expiresAt.UTC().Format(timestampLayout),
	})
}

func (h *httpHandler) handleGetAccount(c *gin.Context) {
	account, ok := c.Get(accountContextKey)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "a valid session is required")
		return
	}
	c.JSON(http.StatusOK, newAccountPayload(account.(users.Account)))
}

func (h *httpHandler) handleDeleteCurrentSession(c *gin.Context) {
	sessionID := c.GetString(sessionIDContextKey)
	if err := h.accounts.EndSession(c.Request.Context(), sessionID); err != nil && !errors.Is(err, users.ErrSessionNotFound) {
		h.logger.Error("session revoke failed", zap.String("user_id", c.GetString(userIDContextKey)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "session_delete_failed", "failed to delete session")
		return
	}
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

func (h *httpHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
