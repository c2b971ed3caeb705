package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers. Matched with errors.Is so the
// storage layer can wrap them with context.
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrInvalidRewardID     = errors.New("invalid reward id")
	ErrRewardUnavailable   = errors.New("reward not available")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDeliveryFailed      = errors.New("email delivery failed")
)

// InsufficientBalanceError carries the exact shortfall so the user-facing
// message can state both required and current amounts.
type InsufficientBalanceError struct {
	Required int64
	Current  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d AuraCoins but have %d", e.Required, e.Current)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
