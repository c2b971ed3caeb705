package services

import (
	"testing"

	"auracoins-server/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveRewards_OrderingAndFiltering(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	seedReward(t, db, models.PlatformXbox, 27000, floatPtr(10))
	seedReward(t, db, models.PlatformNetflix, 22000, floatPtr(15))
	seedReward(t, db, models.PlatformNetflix, 10000, floatPtr(11))
	inactive := seedReward(t, db, models.PlatformSteam, 5000, nil)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	rewards, skipped, err := svc.ListActiveRewards()
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rewards, 3)

	// platform ASC, then price ASC
	assert.Equal(t, models.PlatformNetflix, rewards[0].Platform)
	assert.Equal(t, int64(10000), rewards[0].Price)
	assert.Equal(t, models.PlatformNetflix, rewards[1].Platform)
	assert.Equal(t, int64(22000), rewards[1].Price)
	assert.Equal(t, models.PlatformXbox, rewards[2].Platform)
}

func TestListActiveRewards_TolerantParse(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	seedReward(t, db, models.PlatformPSN, 18000, nil)
	// A legacy row with a provider the catalog no longer recognizes is
	// dropped from the listing, not surfaced as an error.
	bogus := &models.Reward{
		ID:       uuid.NewString(),
		Title:    "Hulu - 1 Month",
		Platform: models.RewardPlatform("hulu"),
		Price:    9000,
		IsActive: true,
	}
	require.NoError(t, db.Create(bogus).Error)

	rewards, skipped, err := svc.ListActiveRewards()
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rewards, 1)
	assert.Equal(t, models.PlatformPSN, rewards[0].Platform)
}

func TestGetReward(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)
	reward := seedReward(t, db, models.PlatformSteam, 15000, nil)

	t.Run("by uuid", func(t *testing.T) {
		got, err := svc.GetReward(reward.ID)
		require.NoError(t, err)
		assert.Equal(t, reward.ID, got.ID)
	})

	t.Run("legacy identifier falls back to slug scan", func(t *testing.T) {
		got, err := svc.GetReward(reward.Slug)
		require.NoError(t, err)
		assert.Equal(t, reward.ID, got.ID)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := svc.GetReward("")
		assert.ErrorIs(t, err, ErrInvalidRewardID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetReward(uuid.NewString())
		assert.ErrorIs(t, err, ErrRewardNotFound)
	})

	t.Run("inactive reward is invisible", func(t *testing.T) {
		hidden := seedReward(t, db, models.PlatformXbox, 100, nil)
		require.NoError(t, db.Model(hidden).Update("is_active", false).Error)
		_, err := svc.GetReward(hidden.ID)
		assert.ErrorIs(t, err, ErrRewardNotFound)
	})
}

func TestRewardAvailable(t *testing.T) {
	tests := []struct {
		name     string
		isActive bool
		stock    *int
		want     bool
	}{
		{"active unlimited stock", true, nil, true},
		{"active with stock", true, intPtr(3), true},
		{"active zero stock", true, intPtr(0), false},
		{"inactive unlimited stock", false, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.Reward{IsActive: tt.isActive, StockQuantity: tt.stock}
			assert.Equal(t, tt.want, r.Available())
		})
	}
}

func TestReserveStock(t *testing.T) {
	t.Run("unlimited stock passes through", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRewardService(db)
		reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)

		require.NoError(t, svc.ReserveStockTx(db, reward.ID))

		got, _ := svc.GetReward(reward.ID)
		assert.Nil(t, got.StockQuantity)
	})

	t.Run("decrements finite stock", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRewardService(db)
		reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)
		require.NoError(t, db.Model(reward).Update("stock_quantity", 2).Error)

		require.NoError(t, svc.ReserveStockTx(db, reward.ID))
		require.NoError(t, svc.ReserveStockTx(db, reward.ID))

		err := svc.ReserveStockTx(db, reward.ID)
		assert.ErrorIs(t, err, ErrRewardUnavailable)
	})

	t.Run("inactive reward fails closed", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRewardService(db)
		reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)
		require.NoError(t, db.Model(reward).Update("is_active", false).Error)

		err := svc.ReserveStockTx(db, reward.ID)
		assert.ErrorIs(t, err, ErrRewardUnavailable)
	})
}
