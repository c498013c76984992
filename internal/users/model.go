package users

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Account captures a registered email/password principal.
type Account struct {
	UserID       string    `gorm:"column:user_id;primaryKey;size:190;not null"`
	Email        string    `gorm:"column:user_email;size:320;not null"`
	EmailKey     string    `gorm:"column:user_email_key;size:320;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:72;not null"`
	Name         string    `gorm:"column:user_name;size:320"`
	PrefsJSON    string    `gorm:"column:prefs_json;type:text;not null;default:'{}'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing accounts.
func (Account) TableName() string {
	return "user_accounts"
}

// Prefs decodes the stored preference map. Corrupt payloads decode as empty.
func (a Account) Prefs() map[string]any {
	prefs := map[string]any{}
	if strings.TrimSpace(a.PrefsJSON) == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(a.PrefsJSON), &prefs); err != nil {
		return map[string]any{}
	}
	return prefs
}

// Session records an issued login session so it can be revoked before its token expires.
type Session struct {
	SessionID string    `gorm:"column:session_id;primaryKey;size:190;not null"`
	UserID    string    `gorm:"column:user_id;size:190;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing sessions.
func (Session) TableName() string {
	return "user_sessions"
}

// normalize value helper used across service implementation.
func normalize(value string) string {
	return strings.TrimSpace(value)
}

// NormalizeEmail trims and case-folds an email into the lookup key. The
// address shown to the user keeps its original casing.
func NormalizeEmail(value string) string {
	return cases.Fold().String(normalize(value))
}
