package jobs

import (
	"bytes"
	"context"
	"testing"
	"time"

	"libnext-backend/internal/config"
	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransactionRepo struct {
	mock.Mock
}

func (m *mockTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *mockTransactionRepo) CreateIfAvailable(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *mockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) List(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) ListByBook(ctx context.Context, bookID int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *mockTransactionRepo) PendingLoanStarts(ctx context.Context, userID int32) ([]time.Time, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]time.Time), args.Error(1)
}
func (m *mockTransactionRepo) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) (*domain.Transaction, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var now = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func newRunner(repo *mockTransactionRepo) *JobRunner {
	policy := service.ChargePolicy{
		PerDay:   10,
		Limit:    100,
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}
	return NewJobRunner(repo, policy, &config.Config{})
}

func pendingLoan(id, userID int32, days int) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		UserID:    userID,
		BookID:    1,
		Status:    domain.TransactionStatusPending,
		CreatedAt: now.AddDate(0, 0, -days),
	}
}

func TestJobRunner_OutstandingDues(t *testing.T) {
	repo := new(mockTransactionRepo)
	repo.On("ListPending", mock.Anything).Return([]domain.Transaction{
		pendingLoan(1, 1, 2),
		pendingLoan(4, 1, 3),
		pendingLoan(2, 2, 11),
		pendingLoan(3, 5, 0),
	}, nil)

	dues, err := newRunner(repo).OutstandingDues(context.Background())
	require.NoError(t, err)
	require.Len(t, dues, 3)

	assert.Equal(t, int32(1), dues[0].UserID)
	assert.Equal(t, int64(50), dues[0].TotalDue)
	assert.Len(t, dues[0].Transactions, 2)

	assert.Equal(t, int32(2), dues[1].UserID)
	assert.Equal(t, int64(110), dues[1].TotalDue)

	assert.Equal(t, int32(5), dues[2].UserID)
	assert.Equal(t, int64(0), dues[2].TotalDue)
}

func TestJobRunner_OutstandingDuesEmpty(t *testing.T) {
	repo := new(mockTransactionRepo)
	repo.On("ListPending", mock.Anything).Return([]domain.Transaction{}, nil)

	dues, err := newRunner(repo).OutstandingDues(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dues)
}

func TestJobRunner_ReportOutstandingDues(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "info", "text")
	t.Cleanup(func() { logger.Initialize("info", "text") })

	repo := new(mockTransactionRepo)
	repo.On("ListPending", mock.Anything).Return([]domain.Transaction{
		pendingLoan(1, 1, 2),
		pendingLoan(2, 2, 11),
	}, nil)

	newRunner(repo).ReportOutstandingDues()

	out := buf.String()
	assert.Contains(t, out, "User over charge limit")
	assert.Contains(t, out, "user_id=2")
	assert.Contains(t, out, "blocked=1")
	assert.Contains(t, out, "total_due=130")
	assert.Contains(t, out, "service=dues-report")
	assert.Contains(t, out, "level=WARN")
}

func TestJobRunner_ReportOutstandingDuesStoreFailure(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "info", "text")
	t.Cleanup(func() { logger.Initialize("info", "text") })

	repo := new(mockTransactionRepo)
	repo.On("ListPending", mock.Anything).Return(nil, domain.ErrTransient)

	assert.NotPanics(t, func() { newRunner(repo).ReportOutstandingDues() })
	assert.Contains(t, buf.String(), "Failed to collect outstanding dues")
}
