package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"auracoins-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB *gorm.DB

	// loc is the calendar used for streak day boundaries, so late-evening
	// activity in the service's region counts toward the local day, not UTC's.
	loc *time.Location
}

func NewProfileService(db *gorm.DB) *ProfileService {
	loc := time.UTC
	if tz := os.Getenv("STREAK_TIMEZONE"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			log.Printf("⚠️  [PROFILE] Invalid STREAK_TIMEZONE %q, falling back to UTC: %v", tz, err)
		}
	}
	return &ProfileService{DB: db, loc: loc}
}

// startOfDay returns midnight of t's calendar day in the streak location.
func (s *ProfileService) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// GetProfile is a side-effect-free read.
func (s *ProfileService) GetProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &profile, nil
}

// EnsureProfile creates the profile row on first sight of a user (idempotent).
// Identity fields come from the auth service's session context.
func (s *ProfileService) EnsureProfile(userID, email, name string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.Where("id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{
			ID:    userID,
			Email: email,
			Name:  name,
			Level: 1,
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		log.Printf("👤 [PROFILE] Created profile for %s", userID)
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile edits display fields only. The UPDATE is column-scoped to
// name/avatar_url so a debit or credit committing concurrently is never
// overwritten; balance, streak, level and the counters stay writable only
// through their own paths.
func (s *ProfileService) UpdateProfile(userID string, name *string, avatarURL *string) (*models.Profile, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}

	if len(updates) > 0 {
		res := s.DB.Model(&models.Profile{}).
			Where("id = ?", userID).
			Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrProfileNotFound
		}
	}
	return s.GetProfile(userID)
}

// DebitTx deducts amount from the user's balance and appends a "spent"
// ledger entry, inside the caller's transaction.
//
// The check and the write are one conditional UPDATE, so two concurrent
// debits can never both pass a stale balance check: the row predicate
// `balance >= amount` is evaluated under the row lock.
func (s *ProfileService) DebitTx(tx *gorm.DB, userID string, amount int64, sourceType, description string) (int64, error) {
	res := tx.Model(&models.Profile{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("debit balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing profile from a short balance.
		var profile models.Profile
		if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProfileNotFound
			}
			return 0, fmt.Errorf("debit balance: %w", err)
		}
		return 0, &InsufficientBalanceError{Required: amount, Current: profile.Balance}
	}

	var newBalance int64
	if err := tx.Model(&models.Profile{}).Where("id = ?", userID).
		Pluck("balance", &newBalance).Error; err != nil {
		return 0, fmt.Errorf("read balance after debit: %w", err)
	}

	entry := models.PointTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         models.TransactionSpent,
		Amount:       -amount,
		BalanceAfter: newBalance,
		SourceType:   sourceType,
		Description:  description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return newBalance, nil
}

// Debit runs DebitTx in its own transaction.
func (s *ProfileService) Debit(userID string, amount int64, sourceType, description string) (int64, error) {
	var newBalance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.DebitTx(tx, userID, amount, sourceType, description)
		return err
	})
	return newBalance, err
}

// CreditTx adds amount to the user's balance, bumps total_points_earned
// and appends an "earned" ledger entry, inside the caller's transaction.
func (s *ProfileService) CreditTx(tx *gorm.DB, userID string, amount int64, sourceType, description string) (int64, error) {
	res := tx.Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"balance":             gorm.Expr("balance + ?", amount),
			"total_points_earned": gorm.Expr("total_points_earned + ?", amount),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("credit balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrProfileNotFound
	}

	var newBalance int64
	if err := tx.Model(&models.Profile{}).Where("id = ?", userID).
		Pluck("balance", &newBalance).Error; err != nil {
		return 0, fmt.Errorf("read balance after credit: %w", err)
	}

	entry := models.PointTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         models.TransactionEarned,
		Amount:       amount,
		BalanceAfter: newBalance,
		SourceType:   sourceType,
		Description:  description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return newBalance, nil
}

// Credit runs CreditTx in its own transaction.
func (s *ProfileService) Credit(userID string, amount int64, sourceType, description string) (int64, error) {
	var newBalance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.CreditTx(tx, userID, amount, sourceType, description)
		return err
	})
	return newBalance, err
}

// RecordActivityTx advances the consecutive-day streak for activity on day.
// Same-day repeats are no-ops; a one-day gap extends the streak; anything
// longer restarts it at 1.
func (s *ProfileService) RecordActivityTx(tx *gorm.DB, userID string, day time.Time) error {
	var profile models.Profile
	if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	day = s.startOfDay(day)
	if profile.LastActivityDate != nil {
		last := s.startOfDay(*profile.LastActivityDate)
		switch {
		case last.Equal(day):
			return nil
		case day.Equal(last.AddDate(0, 0, 1)):
			profile.Streak++
		default:
			profile.Streak = 1
		}
	} else {
		profile.Streak = 1
	}
	if profile.Streak > profile.LongestStreak {
		profile.LongestStreak = profile.Streak
	}

	// Column-scoped so this write can never clobber a concurrent balance
	// mutation.
	return tx.Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"streak":             profile.Streak,
			"longest_streak":     profile.LongestStreak,
			"last_activity_date": day,
		}).Error
}

// GetLedger returns the user's point transactions, newest first, paginated.
func (s *ProfileService) GetLedger(userID string, page, size int) ([]models.PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointTransaction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}
