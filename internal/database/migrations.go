package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillAccountEmailKeys = "2026-05-01_backfill_account_email_keys"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB, *zap.Logger) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	migrations := []migrationDefinition{
		{name: migrationBackfillAccountEmailKeys, apply: backfillAccountEmailKeys},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db, logger); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		logger.Info("database migration applied", zap.String("migration", migration.name))
	}
	return nil
}

// backfillAccountEmailKeys fills the folded lookup key for accounts that
// predate it. The oldest account keeps a contested key; later ones get a key
// that no email folds to, so they cannot sign in until resolved by hand.
func backfillAccountEmailKeys(db *gorm.DB, logger *zap.Logger) error {
	var accounts []users.Account
	if err := db.Select("user_id", "user_email", "user_email_key").
		Order("created_at, user_id").
		Find(&accounts).Error; err != nil {
		return err
	}

	taken := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		if account.EmailKey != "" {
			taken[account.EmailKey] = struct{}{}
		}
	}

	for _, account := range accounts {
		if account.EmailKey != "" {
			continue
		}
		key := users.NormalizeEmail(account.Email)
		if _, conflict := taken[key]; conflict || key == "" {
			logger.Warn("account email key conflict",
				zap.String("user_id", account.UserID),
				zap.String("email_key", key),
			)
			key = "conflict:" + account.UserID
		}
		taken[key] = struct{}{}
		if err := db.Model(&users.Account{}).
			Where("user_id = ?", account.UserID).
			Update("user_email_key", key).Error; err != nil {
			return err
		}
	}
	return nil
}
