package service_test

import (
	"context"
	"testing"
	"time"

	"libnext-backend/internal/config"
	"libnext-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 20, 9, 30, 0, 0, time.UTC)

func testPolicy() service.ChargePolicy {
	return service.ChargePolicy{
		PerDay:   10,
		Limit:    100,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
}

func daysAgo(d int) time.Time {
	return fixedNow.AddDate(0, 0, -d)
}

func TestChargePolicy_DaysElapsed(t *testing.T) {
	p := testPolicy()

	t.Run("Same day", func(t *testing.T) {
		assert.Equal(t, int64(0), p.DaysElapsed(fixedNow.Add(-9*time.Hour), fixedNow))
	})

	t.Run("Crossing midnight counts one day", func(t *testing.T) {
		start := time.Date(2024, time.March, 19, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, int64(1), p.DaysElapsed(start, fixedNow))
	})

	t.Run("Future start clamps to zero", func(t *testing.T) {
		assert.Equal(t, int64(0), p.DaysElapsed(fixedNow.AddDate(0, 0, 3), fixedNow))
	})

	t.Run("Calendar days follow the configured timezone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		p := service.ChargePolicy{Location: tokyo}
		// 2024-03-19 16:00 UTC is already 2024-03-20 in Tokyo.
		start := time.Date(2024, time.March, 19, 16, 0, 0, 0, time.UTC)
		assert.Equal(t, int64(0), p.DaysElapsed(start, fixedNow))
		assert.Equal(t, int64(1), testPolicy().DaysElapsed(start, fixedNow))
	})
}

func TestChargePolicy_Accrued(t *testing.T) {
	p := testPolicy()

	assert.Equal(t, int64(0), p.Accrued(nil))
	assert.Equal(t, int64(90), p.Accrued([]time.Time{daysAgo(9)}))
	assert.Equal(t, int64(50), p.Accrued([]time.Time{daysAgo(2), daysAgo(3)}))

	assert.True(t, p.WithinLimit(99))
	assert.False(t, p.WithinLimit(100))
}

func TestNewChargePolicy(t *testing.T) {
	p := service.NewChargePolicy(config.LendingConfig{ChargePerDay: 5, ChargeLimit: 50, Timezone: "UTC"})
	assert.Equal(t, int64(5), p.PerDay)
	assert.Equal(t, int64(50), p.Limit)
	assert.Equal(t, time.UTC, p.Location)
	assert.NotNil(t, p.Now)
}

func TestCreditValidator_CanBorrow(t *testing.T) {
	ctx := context.Background()
	userID := int32(1)

	t.Run("No pending loans always passes", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		policy := testPolicy()
		policy.Limit = 1
		v := service.NewCreditValidator(txRepo, policy)

		txRepo.On("PendingLoanStarts", ctx, userID).Return([]time.Time{}, nil)

		ok, err := v.CanBorrow(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Nine days accrued is under the limit", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		v := service.NewCreditValidator(txRepo, testPolicy())

		txRepo.On("PendingLoanStarts", ctx, userID).Return([]time.Time{daysAgo(9)}, nil)

		ok, err := v.CanBorrow(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Eleven days accrued blocks", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		v := service.NewCreditValidator(txRepo, testPolicy())

		txRepo.On("PendingLoanStarts", ctx, userID).Return([]time.Time{daysAgo(11)}, nil)

		charge, err := v.AccruedCharge(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(110), charge)

		ok, err := v.CanBorrow(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Exactly at the limit blocks", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		v := service.NewCreditValidator(txRepo, testPolicy())

		txRepo.On("PendingLoanStarts", ctx, userID).Return([]time.Time{daysAgo(10)}, nil)

		ok, err := v.CanBorrow(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Store failure propagates", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		v := service.NewCreditValidator(txRepo, testPolicy())

		txRepo.On("PendingLoanStarts", ctx, userID).Return(nil, assert.AnError)

		ok, err := v.CanBorrow(ctx, userID)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, ok)
	})
}
