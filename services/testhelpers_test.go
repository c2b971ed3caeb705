package services

import (
	"fmt"
	"strings"
	"testing"

	"auracoins-server/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
// The named shared-cache DSN keeps GORM's pooled connections on the same
// database for the lifetime of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Reward{},
		&models.Redemption{},
		&models.PointTransaction{},
		&models.EmailNotification{},
		&models.WatchSession{},
	))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, balance int64) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:      uuid.NewString(),
		Email:   "usuario@example.com",
		Name:    "Usuario Demo",
		Balance: balance,
		Level:   1,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func seedReward(t *testing.T, db *gorm.DB, platform models.RewardPlatform, price int64, cashbackPct *float64) *models.Reward {
	t.Helper()
	reward := &models.Reward{
		ID:                 uuid.NewString(),
		Title:              fmt.Sprintf("%s - Gift Card", platform),
		Slug:               fmt.Sprintf("%s-gift-card-%d", platform, price),
		Platform:           platform,
		Price:              price,
		CashbackPercentage: cashbackPct,
		IsActive:           true,
	}
	require.NoError(t, db.Create(reward).Error)
	return reward
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// interleaveDebit arranges for a raw conditional debit to run right before
// the next UPDATE on profiles, emulating a spend that commits while another
// code path is between its read and its write. Returns a flag reporting
// whether the debit fired.
func interleaveDebit(t *testing.T, db *gorm.DB, userID string, amount int64) *bool {
	t.Helper()
	fired := false
	err := db.Callback().Update().Before("gorm:update").Register("interleaved_debit", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "profiles" {
			return
		}
		fired = true
		db.Exec("UPDATE profiles SET balance = balance - ? WHERE id = ? AND balance >= ?",
			amount, userID, amount)
	})
	require.NoError(t, err)
	return &fired
}
