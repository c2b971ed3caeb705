package models

import "time"

// WatchSession records one earning event: a user watched streaming
// content and was credited AuraCoins and XP for it.
type WatchSession struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	MovieID    int    `gorm:"not null" json:"movie_id"`
	MovieTitle string `json:"movie_title"`

	MinutesWatched int   `gorm:"not null" json:"minutes_watched"`
	CoinsEarned    int64 `gorm:"not null" json:"coins_earned"`
	XPEarned       int64 `gorm:"not null" json:"xp_earned"`

	CreatedAt time.Time `json:"created_at"`
}
