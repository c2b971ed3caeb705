// services/activity_service.go
package services

import (
	"fmt"
	"time"

	"auracoins-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Earning rates for watch-to-earn. Coins land on the balance through the
// normal Credit path so every earn shows up in the ledger.
const (
	CoinsPerMinuteWatched = 10
	XPPerMinuteWatched    = 2
	MaxMinutesPerSession  = 600
)

type ActivityService struct {
	DB          *gorm.DB
	Profiles    *ProfileService
	Progression *ProgressionService
}

func NewActivityService(db *gorm.DB, profiles *ProfileService, progression *ProgressionService) *ActivityService {
	return &ActivityService{DB: db, Profiles: profiles, Progression: progression}
}

// RecordWatch credits AuraCoins and XP for a watch session and advances
// the daily streak. All of it commits or none of it does.
func (s *ActivityService) RecordWatch(userID string, movieID int, movieTitle string, minutes int) (*models.WatchSession, error) {
	if minutes < 1 || minutes > MaxMinutesPerSession {
		return nil, fmt.Errorf("minutes_watched must be between 1 and %d", MaxMinutesPerSession)
	}

	coins := int64(minutes) * CoinsPerMinuteWatched
	xp := int64(minutes) * XPPerMinuteWatched

	session := models.WatchSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		MovieID:        movieID,
		MovieTitle:     movieTitle,
		MinutesWatched: minutes,
		CoinsEarned:    coins,
		XPEarned:       xp,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Profiles.CreditTx(tx, userID, coins, "watch",
			fmt.Sprintf("Ganaste %d AuraCoins por ver %s", coins, movieTitle)); err != nil {
			return err
		}
		if _, err := s.Progression.AwardXPTx(tx, userID, xp, "watch_session"); err != nil {
			return err
		}
		if err := s.Profiles.RecordActivityTx(tx, userID, time.Now()); err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
