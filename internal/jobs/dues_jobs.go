package jobs

import (
	"context"
	"time"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"
)

// OutstandingDues groups every pending loan by user and prices it with the
// runner's charge policy. Users come back in ascending id order.
func (jr *JobRunner) OutstandingDues(ctx context.Context) ([]domain.UserDues, error) {
	pending, err := jr.txRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	var dues []domain.UserDues
	var starts []time.Time
	flush := func() {
		if len(dues) > 0 {
			dues[len(dues)-1].TotalDue = jr.policy.Accrued(starts)
		}
		starts = starts[:0]
	}
	// ListPending orders by user_id, so each user's loans are contiguous.
	for _, tx := range pending {
		if len(dues) == 0 || dues[len(dues)-1].UserID != tx.UserID {
			flush()
			dues = append(dues, domain.UserDues{UserID: tx.UserID})
		}
		last := &dues[len(dues)-1]
		last.Transactions = append(last.Transactions, tx)
		starts = append(starts, tx.CreatedAt)
	}
	flush()
	return dues, nil
}

// ReportOutstandingDues logs the accrued charge of every borrower and warns
// about those who can no longer borrow.
func (jr *JobRunner) ReportOutstandingDues() {
	jr.runWithRecovery("ReportOutstandingDues", func() {
		ctx := logger.NewContext(context.Background(), logger.WithService("dues-report"))

		dues, err := jr.OutstandingDues(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to collect outstanding dues", "error", err)
			return
		}

		var total int64
		blocked := 0
		for _, d := range dues {
			total += d.TotalDue
			if !jr.policy.WithinLimit(d.TotalDue) {
				blocked++
				logger.WarnContext(ctx, "User over charge limit",
					"user_id", d.UserID,
					"total_due", d.TotalDue,
					"limit", jr.policy.Limit,
					"open_loans", len(d.Transactions))
				continue
			}
			logger.FromContext(ctx).Debug("User dues",
				"user_id", d.UserID,
				"total_due", d.TotalDue,
				"open_loans", len(d.Transactions))
		}

		logger.InfoContext(ctx, "Outstanding dues reported",
			"borrowers", len(dues),
			"blocked", blocked,
			"total_due", total)
	})
}
