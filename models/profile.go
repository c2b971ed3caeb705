package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the local, authoritative copy of a user's rewards state.
// Identity (email, password, sessions) lives in the auth service; the
// profile row is created on first sight of a user and owned by this
// service from then on.
type Profile struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string  `gorm:"index;not null" json:"email"`
	Name      string  `gorm:"not null" json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	// Balance is only ever mutated through Debit/Credit. The conditional
	// update in ProfileService plus this constraint keep it non-negative.
	Balance           int64 `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	TotalPointsEarned int64 `gorm:"not null;default:0" json:"total_points_earned"`

	Streak           int `gorm:"not null;default:0" json:"streak"`
	LongestStreak    int `gorm:"not null;default:0" json:"longest_streak"`
	Level            int `gorm:"not null;default:1" json:"level"`
	ExperiencePoints int64 `gorm:"not null;default:0" json:"experience_points"`

	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
