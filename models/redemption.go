package models

import "time"

// RedemptionStatus — redemptions are created "completed"; there is no
// further state machine. The row is never mutated after insert.
type RedemptionStatus string

const (
	RedemptionStatusCompleted RedemptionStatus = "completed"
)

// Redemption is the proof-of-purchase row written when a user trades
// AuraCoins for a reward. Price and cashback are snapshotted at redeem
// time so later catalog edits never rewrite history.
type Redemption struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	RewardID string `gorm:"type:uuid;not null;index" json:"reward_id"`

	AuracoinsSpent int64 `gorm:"not null" json:"auracoins_spent"`
	CashbackEarned int64 `gorm:"not null;default:0" json:"cashback_earned"`

	// Issued once, immutable. Uniqueness is enforced by this index; the
	// orchestrator regenerates and retries on a duplicate-key insert.
	RedemptionCode string `gorm:"uniqueIndex;not null;size:14" json:"redemption_code"`

	Status    RedemptionStatus `gorm:"not null;default:'completed'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
