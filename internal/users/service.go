package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxIdentifierLength = 190
	minPasswordLength   = 8
	// maxPasswordLength is the bcrypt input limit.
	maxPasswordLength = 72
	defaultSessionTTL = 30 * 24 * time.Hour
	// UniqueIDPlaceholder asks the service to generate the account id.
	UniqueIDPlaceholder = "unique()"
)

var (
	// ErrInvalidAccount indicates the registration input lacked a usable email or identifier.
	ErrInvalidAccount = errors.New("users: invalid account")
	// ErrWeakPassword indicates the password is outside the accepted length bounds.
	ErrWeakPassword = errors.New("users: password must be between 8 and 72 characters")
	// ErrAccountExists indicates the email or identifier is already registered.
	ErrAccountExists = errors.New("users: account already exists")
	// ErrInvalidCredentials indicates the email/password pair did not match an account.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrSessionNotFound indicates the session is unknown, revoked, or expired.
	ErrSessionNotFound = errors.New("users: session not found")
	// ErrAccountNotFound indicates the account backing a session no longer exists.
	ErrAccountNotFound = errors.New("users: account not found")
)

// IDProvider issues identifiers for accounts and sessions.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required for account and session management.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// Service manages email/password accounts and their login sessions.
type Service struct {
	db         *gorm.DB
	now        func() time.Time
	idProvider IDProvider
	sessionTTL time.Duration
	logger     *zap.Logger
	cache      sync.Map
}

// RegisterRequest carries the registration input.
type RegisterRequest struct {
	UserID   string
	Email    string
	Password string
	Name     string
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("users: id provider required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         cfg.Database,
		now:        clock,
		idProvider: cfg.IDProvider,
		sessionTTL: ttl,
		logger:     logger,
		cache:      sync.Map{},
	}, nil
}

// SessionTTL reports how long issued sessions stay valid.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Register creates an account. An empty or placeholder user id is replaced by a generated one.
func (s *Service) Register(ctx context.Context, request RegisterRequest) (Account, error) {
	email := normalize(request.Email)
	emailKey := NormalizeEmail(email)
	if emailKey == "" {
		return Account{}, fmt.Errorf("%w: email required", ErrInvalidAccount)
	}
	if len(request.Password) < minPasswordLength || len(request.Password) > maxPasswordLength {
		return Account{}, ErrWeakPassword
	}

	userID := normalize(request.UserID)
	if userID == "" || userID == UniqueIDPlaceholder {
		generated, err := s.idProvider.NewID()
		if err != nil {
			return Account{}, err
		}
		userID = generated
	}
	if len(userID) > maxIdentifierLength {
		return Account{}, fmt.Errorf("%w: user id exceeds %d characters", ErrInvalidAccount, maxIdentifierLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		UserID:       userID,
		Email:        email,
		EmailKey:     emailKey,
		PasswordHash: string(hash),
		Name:         normalize(request.Name),
		PrefsJSON:    "{}",
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Account
		lookupErr := tx.Where("user_email_key = ? OR user_id = ?", emailKey, userID).Take(&existing).Error
		if lookupErr == nil {
			return ErrAccountExists
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		if !errors.Is(err, ErrAccountExists) {
			s.logger.Error("account registration failed", zap.String("user_id", userID), zap.Error(err))
		}
		return Account{}, err
	}

	s.cache.Store(account.UserID, account)
	s.logger.Info("account registered", zap.String("user_id", account.UserID))
	return account, nil
}

// Authenticate verifies the email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	emailKey := NormalizeEmail(email)
	if emailKey == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}

	var account Account
	err := s.db.WithContext(ctx).Where("user_email_key = ?", emailKey).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// StartSession records a new session for the account.
func (s *Service) StartSession(ctx context.Context, account Account) (Session, error) {
	sessionID, err := s.idProvider.NewID()
	if err != nil {
		return Session{}, err
	}
	session := Session{
		SessionID: sessionID,
		UserID:    account.UserID,
		ExpiresAt: s.now().UTC().Add(s.sessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		s.logger.Error("session insert failed", zap.String("user_id", account.UserID), zap.Error(err))
		return Session{}, err
	}
	return session, nil
}

// ResolveSession returns the account behind an active session.
func (s *Service) ResolveSession(ctx context.Context, sessionID, userID string) (Account, error) {
	sessionID = normalize(sessionID)
	userID = normalize(userID)
	if sessionID == "" || userID == "" {
		return Account{}, ErrSessionNotFound
	}

	var session Session
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Take(&session).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrSessionNotFound
	}
	if err != nil {
		return Account{}, err
	}
	if !s.now().UTC().Before(session.ExpiresAt) {
		return Account{}, ErrSessionNotFound
	}

	return s.Account(ctx, userID)
}

// Account loads an account by id.
func (s *Service) Account(ctx context.Context, userID string) (Account, error) {
	if cached, ok := s.cache.Load(userID); ok {
		if account, ok := cached.(Account); ok {
			return account, nil
		}
	}

	var account Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	s.cache.Store(account.UserID, account)
	return account, nil
}

// EndSession revokes a session. Unknown sessions are not an error.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	sessionID = normalize(sessionID)
	if sessionID == "" {
		return ErrSessionNotFound
	}
	return s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Session{}).Error
}
