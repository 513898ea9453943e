package jobs

import (
	"libnext-backend/internal/config"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository"
	"libnext-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	txRepo repository.TransactionRepository
	policy service.ChargePolicy
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(txRepo repository.TransactionRepository, policy service.ChargePolicy, cfg *config.Config) *JobRunner {
	return &JobRunner{
		txRepo: txRepo,
		policy: policy,
		config: cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ReportOutstandingDues()
}
