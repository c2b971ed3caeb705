package services

import (
	"errors"
	"log"
	"math"

	"auracoins-server/models"

	"gorm.io/gorm"
)

// LevelConfig: XP needed for *next* level (e.g., level 1 → 2 needs BaseXPPerLevel * 1^1.2)
const BaseXPPerLevel = 100

// xpForNextLevel returns XP required to reach level+1 from current level
func xpForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	// L_n = floor(BaseXPPerLevel * n^1.2)
	return int64(float64(BaseXPPerLevel) * math.Pow(float64(currentLevel), 1.2))
}

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// AwardXPTx adds xp to the profile and applies level-up logic, inside the
// caller's transaction. Returns the updated profile.
func (s *ProgressionService) AwardXPTx(tx *gorm.DB, userID string, xp int64, reason string) (*models.Profile, error) {
	var profile models.Profile
	if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	profile.ExperiencePoints += xp

	// Level-up logic: accumulate until enough for next level
	for profile.ExperiencePoints >= int64(BaseXPPerLevel)*int64(profile.Level)+xpForNextLevel(profile.Level) {
		profile.Level++
	}

	// Column-scoped so this write can never clobber a concurrent balance
	// mutation.
	if err := tx.Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"experience_points": profile.ExperiencePoints,
			"level":             profile.Level,
		}).Error; err != nil {
		return nil, err
	}

	log.Printf("🎮 XP Awarded: %s → XP=%d, Lvl=%d (reason: %s)",
		userID, profile.ExperiencePoints, profile.Level, reason)

	return &profile, nil
}

// AwardXP runs AwardXPTx in its own transaction.
func (s *ProgressionService) AwardXP(userID string, xp int64, reason string) (*models.Profile, error) {
	var updated *models.Profile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.AwardXPTx(tx, userID, xp, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
