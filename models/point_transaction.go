package models

import "time"

// TransactionType marks the direction of a ledger entry
type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// PointTransaction is an append-only audit record of a balance change.
// Amount is signed (negative for "spent"); BalanceAfter snapshots the
// balance as it stood right after the mutation. Rows are never updated
// or deleted.
type PointTransaction struct {
	ID     string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   TransactionType `gorm:"not null" json:"type"`

	Amount       int64 `gorm:"not null" json:"amount"`
	BalanceAfter int64 `gorm:"not null" json:"balance_after"`

	SourceType  string `gorm:"not null" json:"source_type"` // e.g. "redemption", "cashback", "watch"
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
