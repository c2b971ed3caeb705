// services/redemption_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"auracoins-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// codeInsertAttempts bounds the regenerate-and-retry loop on a
// redemption-code collision.
const codeInsertAttempts = 3

type RedemptionService struct {
	DB       *gorm.DB
	Profiles *ProfileService
	Rewards  *RewardService
	Emails   *EmailService

	// codeGen produces candidate redemption codes; overridable in tests.
	codeGen func() string
}

func NewRedemptionService(db *gorm.DB, profiles *ProfileService, rewards *RewardService, emails *EmailService) *RedemptionService {
	return &RedemptionService{
		DB:       db,
		Profiles: profiles,
		Rewards:  rewards,
		Emails:   emails,
		codeGen:  GenerateRedemptionCode,
	}
}

// RedemptionResult is what a successful redemption hands back to the caller.
type RedemptionResult struct {
	Redemption     *models.Redemption `json:"redemption"`
	RedemptionCode string             `json:"redemption_code"`
	CashbackEarned int64              `json:"cashback_earned"`
	NewBalance     int64              `json:"new_balance"`
}

// CashbackFor computes the cashback for spending price AuraCoins at the
// given percentage. Truncating division — the user is never over-credited.
func CashbackFor(price int64, pct *float64) int64 {
	if pct == nil || *pct <= 0 {
		return 0
	}
	return int64(math.Floor(float64(price) * *pct / 100))
}

// Redeem trades the user's AuraCoins for the reward.
//
// Stock reservation, debit (with its ledger entry) and the redemption row
// are one database transaction: either the balance drops AND the proof row
// exists, or neither happened. The cashback credit and the confirmation
// email run after commit and are best-effort — their failure never rolls
// back a completed redemption.
func (s *RedemptionService) Redeem(userID, rewardID string) (*RedemptionResult, error) {
	reward, err := s.Rewards.GetReward(rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.Available() {
		return nil, ErrRewardUnavailable
	}

	cashback := CashbackFor(reward.Price, reward.CashbackPercentage)

	var redemption models.Redemption
	var newBalance int64

	newCode := s.codeGen
	if newCode == nil {
		newCode = GenerateRedemptionCode
	}

	// Retry the whole transaction on a redemption-code collision: once a
	// Postgres transaction hits a unique violation it is aborted, so the
	// retry has to restart from the top.
	for attempt := 1; ; attempt++ {
		code := newCode()

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.Rewards.ReserveStockTx(tx, reward.ID); err != nil {
				return err
			}

			bal, err := s.Profiles.DebitTx(tx, userID, reward.Price, "redemption",
				fmt.Sprintf("Canje de recompensa: %s", reward.Title))
			if err != nil {
				return err
			}
			newBalance = bal

			redemption = models.Redemption{
				ID:             uuid.NewString(),
				UserID:         userID,
				RewardID:       reward.ID,
				AuracoinsSpent: reward.Price,
				CashbackEarned: cashback,
				RedemptionCode: code,
				Status:         models.RedemptionStatusCompleted,
			}
			if err := tx.Create(&redemption).Error; err != nil {
				return fmt.Errorf("record redemption: %w", err)
			}
			return nil
		})

		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < codeInsertAttempts {
			log.Printf("⚠️  [REDEEM] Code collision on attempt %d, regenerating", attempt)
			continue
		}
		return nil, err
	}

	// Cashback credit is non-fatal: the redemption stands even if this
	// write fails. The ledger stays reconcilable from the redemption row.
	if cashback > 0 {
		bal, err := s.Profiles.Credit(userID, cashback, "cashback",
			fmt.Sprintf("Cashback del %.0f%% por canje de recompensa", *reward.CashbackPercentage))
		if err != nil {
			log.Printf("❌ [REDEEM] Cashback credit failed for %s (redemption %s): %v",
				userID, redemption.ID, err)
		} else {
			newBalance = bal
		}
	}

	// Confirmation email goes through the outbox; the worker owns delivery.
	if s.Emails != nil {
		if err := s.Emails.EnqueueRedemptionEmail(userID, reward, &redemption); err != nil {
			log.Printf("❌ [REDEEM] Failed to enqueue confirmation email for %s: %v", redemption.ID, err)
		}
	}

	log.Printf("✅ [REDEEM] %s redeemed %q for %d AuraCoins (cashback %d, code %s)",
		userID, reward.Title, reward.Price, cashback, redemption.RedemptionCode)

	return &RedemptionResult{
		Redemption:     &redemption,
		RedemptionCode: redemption.RedemptionCode,
		CashbackEarned: cashback,
		NewBalance:     newBalance,
	}, nil
}

// ListRedemptions returns the user's redemption history, newest first.
func (s *RedemptionService) ListRedemptions(userID string, page, size int) ([]models.Redemption, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.Redemption{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var redemptions []models.Redemption
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&redemptions).Error
	return redemptions, total, err
}
