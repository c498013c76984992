package database

import (
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/documents"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&users.Account{}, &users.Session{}, &documents.Document{}, &migrationRecord{}); err != nil {
		return nil, err
	}

	if purged, err := purgeExpiredSessions(db, time.Now().UTC()); err != nil && logger != nil {
		logger.Warn("expired session purge failed", zap.Error(err))
	} else if purged > 0 && logger != nil {
		logger.Info("expired sessions purged", zap.Int64("count", purged))
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}

func purgeExpiredSessions(db *gorm.DB, now time.Time) (int64, error) {
	outcome := db.Where("expires_at <= ?", now).Delete(&users.Session{})
	return outcome.RowsAffected, outcome.Error
}
