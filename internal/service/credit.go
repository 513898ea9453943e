package service

import (
	"context"
	"time"

	"libnext-backend/internal/config"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository"
	"libnext-backend/internal/utils"
)

// ChargePolicy prices open loans. Days are whole calendar days in Location,
// so a loan taken late yesterday already costs one day this morning.
type ChargePolicy struct {
	PerDay   int64
	Limit    int64
	Location *time.Location
	Now      func() time.Time
}

func NewChargePolicy(cfg config.LendingConfig) ChargePolicy {
	return ChargePolicy{
		PerDay:   cfg.ChargePerDay,
		Limit:    cfg.ChargeLimit,
		Location: cfg.Location(),
		Now:      time.Now,
	}
}

func (p ChargePolicy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p ChargePolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// DaysElapsed counts calendar-day boundaries between start and now. Loans
// stamped in the future count as zero days.
func (p ChargePolicy) DaysElapsed(start, now time.Time) int64 {
	days := utils.CalendarDaysBetween(start, now, p.location())
	if days < 0 {
		return 0
	}
	return int64(days)
}

// Accrued sums the charge over the given loan start times as of now.
func (p ChargePolicy) Accrued(starts []time.Time) int64 {
	now := p.now()
	var total int64
	for _, start := range starts {
		total += p.DaysElapsed(start, now) * p.PerDay
	}
	return total
}

// WithinLimit is strict: a charge equal to the limit blocks new loans.
func (p ChargePolicy) WithinLimit(charge int64) bool {
	return charge < p.Limit
}

type creditValidator struct {
	txRepo repository.TransactionRepository
	policy ChargePolicy
}

func NewCreditValidator(txRepo repository.TransactionRepository, policy ChargePolicy) CreditValidator {
	return &creditValidator{txRepo: txRepo, policy: policy}
}

func (v *creditValidator) AccruedCharge(ctx context.Context, userID int32) (int64, error) {
	starts, err := v.txRepo.PendingLoanStarts(ctx, userID)
	if err != nil {
		return 0, err
	}
	return v.policy.Accrued(starts), nil
}

func (v *creditValidator) CanBorrow(ctx context.Context, userID int32) (bool, error) {
	charge, err := v.AccruedCharge(ctx, userID)
	if err != nil {
		return false, err
	}
	logger.FromContext(ctx).Debug("Credit checked", "userID", userID, "charge", charge, "limit", v.policy.Limit)
	return v.policy.WithinLimit(charge), nil
}
