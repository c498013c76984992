package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/auth"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/documents"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDContextKey    = "quicknotes_user_id"
	sessionIDContextKey = "quicknotes_session_id"
	accountContextKey   = "quicknotes_account"

	// ProjectHeader carries the project identifier on every /v1 request.
	ProjectHeader = "X-QuickNotes-Project"
)

var (
	errMissingAccounts         = errors.New("account service dependency required")
	errMissingDocuments        = errors.New("document service dependency required")
	errMissingTokenIssuer      = errors.New("token issuer dependency required")
	errMissingSessionValidator = errors.New("session validator dependency required")
)

// AccountService manages accounts and login sessions.
type AccountService interface {
	Register(ctx context.Context, request users.RegisterRequest) (users.Account, error)
	Authenticate(ctx context.Context, email, password string) (users.Account, error)
	StartSession(ctx context.Context, account users.Account) (users.Session, error)
	ResolveSession(ctx context.Context, sessionID, userID string) (users.Account, error)
	EndSession(ctx context.Context, sessionID string) error
}

// DocumentStore persists owner-scoped documents.
type DocumentStore interface {
	List(ctx context.Context, scope documents.Scope, filters []query.Query) ([]documents.Document, error)
	Create(ctx context.Context, scope documents.Scope, documentID string, data map[string]any) (documents.Document, error)
	Update(ctx context.Context, scope documents.Scope, documentID string, data map[string]any) (documents.Document, error)
	Delete(ctx context.Context, scope documents.Scope, documentID string) error
}

// SessionTokenIssuer mints session tokens.
type SessionTokenIssuer interface {
	IssueSessionToken(ctx context.Context, subject auth.SessionSubject) (string, time.Time, error)
}

// SessionTokenValidator validates session tokens carried by a request.
type SessionTokenValidator interface {
	ValidateRequest(r *http.Request) (auth.SessionClaims, error)
	CookieName() string
}

type Dependencies struct {
	Accounts         AccountService
	Documents        DocumentStore
	TokenIssuer      SessionTokenIssuer
	SessionValidator SessionTokenValidator
	ProjectID        string
	Logger           *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Accounts == nil {
		return nil, errMissingAccounts
	}
	if deps.Documents == nil {
		return nil, errMissingDocuments
	}
	if deps.TokenIssuer == nil {
		return nil, errMissingTokenIssuer
	}
	if deps.SessionValidator == nil {
		return nil, errMissingSessionValidator
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	handler := &httpHandler{
		accounts:   deps.Accounts,
		documents:  deps.Documents,
		tokens:     deps.TokenIssuer,
		sessions:   deps.SessionValidator,
		projectID:  strings.TrimSpace(deps.ProjectID),
		logger:     logger,
		cookieName: deps.SessionValidator.CookieName(),
	}

	router.GET("/healthz", handler.handleHealth)

	api := router.Group("/v1")
	api.Use(handler.requireProject)
	api.POST("/account", handler.handleCreateAccount)
	api.POST("/account/sessions/email", handler.handleCreateEmailSession)

	protected := api.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/account", handler.handleGetAccount)
	protected.DELETE("/account/sessions/current", handler.handleDeleteCurrentSession)
	protected.GET("/databases/:databaseId/collections/:collectionId/documents", handler.handleListDocuments)
	protected.POST("/databases/:databaseId/collections/:collectionId/documents", handler.handleCreateDocument)
	protected.PATCH("/databases/:databaseId/collections/:collectionId/documents/:documentId", handler.handleUpdateDocument)
	protected.DELETE("/databases/:databaseId/collections/:collectionId/documents/:documentId", handler.handleDeleteDocument)

	return router, nil
}

type httpHandler struct {
	accounts   AccountService
	documents  DocumentStore
	tokens     SessionTokenIssuer
	sessions   SessionTokenValidator
	projectID  string
	logger     *zap.Logger
	cookieName string
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", ProjectHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) requireProject(c *gin.Context) {
	if h.projectID == "" {
		c.Next()
		return
	}
	if strings.TrimSpace(c.GetHeader(ProjectHeader)) != h.projectID {
		abortWithError(c, http.StatusBadRequest, "project_mismatch", "project header missing or unknown")
		return
	}
	c.Next()
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	claims, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredSessionToken) || errors.Is(err, auth.ErrMissingSessionToken) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "a valid session is required")
		return
	}

	account, err := h.accounts.ResolveSession(c.Request.Context(), claims.SessionID(), claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrSessionNotFound) || errors.Is(err, users.ErrAccountNotFound) {
			h.logger.Info("session rejected", zap.String("user_id", claims.UserID), zap.Error(err))
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "a valid session is required")
			return
		}
		h.logger.Error("session lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "session_lookup_failed", "session lookup failed")
		return
	}

	c.Set(userIDContextKey, account.UserID)
	c.Set(sessionIDContextKey, claims.SessionID())
	c.Set(accountContextKey, account)
	c.Next()
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

func formatMillis(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(timestampLayout)
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"
