package models

import (
	"time"

	"gorm.io/gorm"
)

// RewardPlatform is the provider a gift card / subscription belongs to
type RewardPlatform string

const (
	PlatformNetflix   RewardPlatform = "netflix"
	PlatformPlayStore RewardPlatform = "playstore"
	PlatformXbox      RewardPlatform = "xbox"
	PlatformPSN       RewardPlatform = "psn"
	PlatformSteam     RewardPlatform = "steam"
)

// ValidPlatform reports whether p is one of the five recognized providers.
func ValidPlatform(p RewardPlatform) bool {
	switch p {
	case PlatformNetflix, PlatformPlayStore, PlatformXbox, PlatformPSN, PlatformSteam:
		return true
	}
	return false
}

// Reward is a catalog entry users can redeem AuraCoins for.
// Created and edited by admins only; read-only to end users.
type Reward struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"index" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Platform    RewardPlatform `gorm:"not null;index" json:"platform"`

	// Price in AuraCoins, snapshotted into redemptions at redeem time.
	Price              int64    `gorm:"not null" json:"price"`
	CashbackPercentage *float64 `json:"cashback_percentage,omitempty"`

	ImageURL string  `gorm:"type:text" json:"image_url"`
	Badge    *string `json:"badge,omitempty"` // promotional tag, e.g. "POPULAR"

	IsActive bool `gorm:"not null;default:true" json:"is_active"`
	// nil = unlimited stock
	StockQuantity *int `json:"stock_quantity,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Available reports whether the reward can currently be redeemed.
func (r *Reward) Available() bool {
	return r.IsActive && (r.StockQuantity == nil || *r.StockQuantity > 0)
}
