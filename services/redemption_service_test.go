package services

import (
	"regexp"
	"testing"

	"auracoins-server/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRedemptionFixture(t *testing.T) (*gorm.DB, *RedemptionService) {
	t.Helper()
	db := newTestDB(t)
	profiles := NewProfileService(db)
	rewards := NewRewardService(db)
	emails := NewEmailService(db)
	return db, NewRedemptionService(db, profiles, rewards, emails)
}

func TestRedeem_SuccessWithCashback(t *testing.T) {
	// balance=30000, price=27000, cashback=10% → debit 27000, credit 2700,
	// final balance 30000 - 27000 + 2700 = 5700
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)
	reward := seedReward(t, db, models.PlatformXbox, 27000, floatPtr(10))

	result, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`), result.RedemptionCode)
	assert.Equal(t, int64(2700), result.CashbackEarned)
	assert.Equal(t, int64(5700), result.NewBalance)

	got, err := svc.Profiles.GetProfile(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5700), got.Balance)
	assert.Equal(t, int64(2700), got.TotalPointsEarned)

	// Exactly one redemption row, snapshotting price and cashback
	var redemptions []models.Redemption
	require.NoError(t, db.Where("user_id = ?", profile.ID).Find(&redemptions).Error)
	require.Len(t, redemptions, 1)
	assert.Equal(t, reward.ID, redemptions[0].RewardID)
	assert.Equal(t, int64(27000), redemptions[0].AuracoinsSpent)
	assert.Equal(t, int64(2700), redemptions[0].CashbackEarned)
	assert.Equal(t, models.RedemptionStatusCompleted, redemptions[0].Status)
	assert.Equal(t, result.RedemptionCode, redemptions[0].RedemptionCode)

	// One "spent" entry of -price, one "earned" entry of the cashback
	var spent, earned []models.PointTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", profile.ID, models.TransactionSpent).Find(&spent).Error)
	require.NoError(t, db.Where("user_id = ? AND type = ?", profile.ID, models.TransactionEarned).Find(&earned).Error)
	require.Len(t, spent, 1)
	require.Len(t, earned, 1)
	assert.Equal(t, int64(-27000), spent[0].Amount)
	assert.Equal(t, int64(3000), spent[0].BalanceAfter)
	assert.Equal(t, int64(2700), earned[0].Amount)
	assert.Equal(t, int64(5700), earned[0].BalanceAfter)
}

func TestRedeem_InsufficientBalance(t *testing.T) {
	// balance=10000, price=18000 → rejected, nothing mutated
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 10000)
	reward := seedReward(t, db, models.PlatformPSN, 18000, nil)

	_, err := svc.Redeem(profile.ID, reward.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var short *InsufficientBalanceError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(18000), short.Required)
	assert.Equal(t, int64(10000), short.Current)

	got, _ := svc.Profiles.GetProfile(profile.ID)
	assert.Equal(t, int64(10000), got.Balance)

	var redemptionCount, ledgerCount int64
	db.Model(&models.Redemption{}).Count(&redemptionCount)
	db.Model(&models.PointTransaction{}).Count(&ledgerCount)
	assert.Equal(t, int64(0), redemptionCount)
	assert.Equal(t, int64(0), ledgerCount)
}

func TestRedeem_OutOfStockRejectedBeforeDebit(t *testing.T) {
	// stock_quantity=0 with is_active=true → unavailable, no debit
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 50000)
	reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)
	require.NoError(t, db.Model(reward).Update("stock_quantity", 0).Error)

	_, err := svc.Redeem(profile.ID, reward.ID)
	assert.ErrorIs(t, err, ErrRewardUnavailable)

	got, _ := svc.Profiles.GetProfile(profile.ID)
	assert.Equal(t, int64(50000), got.Balance)
}

func TestRedeem_StockDecrements(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 50000)
	reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)
	require.NoError(t, db.Model(reward).Update("stock_quantity", 1).Error)

	_, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)

	var after models.Reward
	require.NoError(t, db.First(&after, "id = ?", reward.ID).Error)
	require.NotNil(t, after.StockQuantity)
	assert.Equal(t, 0, *after.StockQuantity)

	// Stock exhausted: second attempt is rejected with balance untouched
	_, err = svc.Redeem(profile.ID, reward.ID)
	assert.ErrorIs(t, err, ErrRewardUnavailable)
	got, _ := svc.Profiles.GetProfile(profile.ID)
	assert.Equal(t, int64(40000), got.Balance)
}

func TestRedeem_NoCashbackMeansNoEarnedEntry(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 20000)
	reward := seedReward(t, db, models.PlatformSteam, 15000, nil)

	result, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.CashbackEarned)
	assert.Equal(t, int64(5000), result.NewBalance)

	var earnedCount int64
	db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type = ?", profile.ID, models.TransactionEarned).
		Count(&earnedCount)
	assert.Equal(t, int64(0), earnedCount)
}

func TestRedeem_FullBalanceTwiceOnlyOneSucceeds(t *testing.T) {
	// Two redemptions each costing the whole balance: the conditional
	// debit guarantees at most one lands.
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 10000)
	reward := seedReward(t, db, models.PlatformPlayStore, 10000, nil)

	_, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)

	_, err = svc.Redeem(profile.ID, reward.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var count int64
	db.Model(&models.Redemption{}).Where("user_id = ?", profile.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	got, _ := svc.Profiles.GetProfile(profile.ID)
	assert.Equal(t, int64(0), got.Balance)
}

func TestRedeem_EnqueuesConfirmationEmail(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)
	reward := seedReward(t, db, models.PlatformXbox, 27000, floatPtr(10))

	result, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)

	var notifications []models.EmailNotification
	require.NoError(t, db.Where("user_id = ?", profile.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationPending, notifications[0].Status)
	assert.Equal(t, profile.Email, notifications[0].ToAddress)
	assert.Contains(t, notifications[0].Subject, reward.Title)
	assert.Contains(t, notifications[0].HTMLBody, result.RedemptionCode)
}

func TestRedeem_CashbackSnapshotSurvivesPriceChange(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)
	reward := seedReward(t, db, models.PlatformNetflix, 22000, floatPtr(15))

	result, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3300), result.CashbackEarned) // floor(22000*15/100)

	// Catalog edits after the fact never rewrite history
	require.NoError(t, db.Model(reward).Update("price", 99999).Error)

	var redemption models.Redemption
	require.NoError(t, db.Where("user_id = ?", profile.ID).First(&redemption).Error)
	assert.Equal(t, int64(22000), redemption.AuracoinsSpent)
	assert.Equal(t, int64(3300), redemption.CashbackEarned)
}

func TestRedeem_CodeCollisionRetriesWithFreshCode(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)
	reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)

	taken := "AAAA-BBBB-CCCC"
	require.NoError(t, db.Create(&models.Redemption{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		RewardID:       reward.ID,
		AuracoinsSpent: 10000,
		RedemptionCode: taken,
		Status:         models.RedemptionStatusCompleted,
	}).Error)

	calls := 0
	svc.codeGen = func() string {
		calls++
		if calls == 1 {
			return taken
		}
		return GenerateRedemptionCode()
	}

	result, err := svc.Redeem(profile.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, taken, result.RedemptionCode)
	assert.Equal(t, int64(20000), result.NewBalance)

	// The rolled-back first attempt left no trace: exactly one debit and
	// one redemption row for the user.
	var spent []models.PointTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", profile.ID, models.TransactionSpent).Find(&spent).Error)
	require.Len(t, spent, 1)
	assert.Equal(t, int64(-10000), spent[0].Amount)

	var count int64
	db.Model(&models.Redemption{}).Where("user_id = ?", profile.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRedeem_CodeCollisionExhaustsAttempts(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)
	reward := seedReward(t, db, models.PlatformNetflix, 10000, nil)

	taken := "DDDD-EEEE-FFFF"
	require.NoError(t, db.Create(&models.Redemption{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		RewardID:       reward.ID,
		AuracoinsSpent: 10000,
		RedemptionCode: taken,
		Status:         models.RedemptionStatusCompleted,
	}).Error)

	calls := 0
	svc.codeGen = func() string {
		calls++
		return taken
	}

	_, err := svc.Redeem(profile.ID, reward.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, codeInsertAttempts, calls)

	// Every attempt rolled back: balance and ledger untouched, no new
	// redemption row.
	got, _ := svc.Profiles.GetProfile(profile.ID)
	assert.Equal(t, int64(30000), got.Balance)

	var ledger, redemptions int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", profile.ID).Count(&ledger)
	db.Model(&models.Redemption{}).Where("user_id = ?", profile.ID).Count(&redemptions)
	assert.Equal(t, int64(0), ledger)
	assert.Equal(t, int64(0), redemptions)
}

func TestRedeem_UnknownAndInvalidReward(t *testing.T) {
	db, svc := newRedemptionFixture(t)
	profile := seedProfile(t, db, 30000)

	_, err := svc.Redeem(profile.ID, "")
	assert.ErrorIs(t, err, ErrInvalidRewardID)

	_, err = svc.Redeem(profile.ID, "definitely-not-a-reward")
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestCashbackFor(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		pct   *float64
		want  int64
	}{
		{"nil percentage", 10000, nil, 0},
		{"zero percentage", 10000, floatPtr(0), 0},
		{"ten percent", 27000, floatPtr(10), 2700},
		{"floors fractional result", 9999, floatPtr(11), 1099}, // 1099.89
		{"full percent", 500, floatPtr(100), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CashbackFor(tt.price, tt.pct))
		})
	}
}
