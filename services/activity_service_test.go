package services

import (
	"testing"

	"auracoins-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWatch(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)
	svc := NewActivityService(db, profiles, NewProgressionService(db))
	profile := seedProfile(t, db, 0)

	session, err := svc.RecordWatch(profile.ID, 550, "Fight Club", 90)
	require.NoError(t, err)
	assert.Equal(t, int64(900), session.CoinsEarned)
	assert.Equal(t, int64(180), session.XPEarned)
	assert.Equal(t, 90, session.MinutesWatched)

	got, err := profiles.GetProfile(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.Balance)
	assert.Equal(t, int64(900), got.TotalPointsEarned)
	assert.Equal(t, int64(180), got.ExperiencePoints)
	assert.Equal(t, 1, got.Streak)
	require.NotNil(t, got.LastActivityDate)

	var entry models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", profile.ID).First(&entry).Error)
	assert.Equal(t, models.TransactionEarned, entry.Type)
	assert.Equal(t, int64(900), entry.Amount)
	assert.Equal(t, "watch", entry.SourceType)
	assert.Contains(t, entry.Description, "Fight Club")
}

func TestRecordWatch_InvalidMinutes(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)
	svc := NewActivityService(db, profiles, NewProgressionService(db))
	profile := seedProfile(t, db, 0)

	for _, minutes := range []int{0, -5, MaxMinutesPerSession + 1} {
		_, err := svc.RecordWatch(profile.ID, 550, "Fight Club", minutes)
		assert.Error(t, err)
	}

	var count int64
	db.Model(&models.WatchSession{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRecordWatch_UnknownProfileRollsBack(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)
	svc := NewActivityService(db, profiles, NewProgressionService(db))

	_, err := svc.RecordWatch("no-such-user", 550, "Fight Club", 30)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	var sessions, entries int64
	db.Model(&models.WatchSession{}).Count(&sessions)
	db.Model(&models.PointTransaction{}).Count(&entries)
	assert.Equal(t, int64(0), sessions)
	assert.Equal(t, int64(0), entries)
}
