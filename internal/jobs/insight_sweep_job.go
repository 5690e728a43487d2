package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"go.uber.org/zap"
)

// InsightSweepJobName is the name of the periodic insight trigger sweep job
const InsightSweepJobName = "insight_sweep"

// ActiveUserSource lists users that currently have active deals.
type ActiveUserSource interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// InsightChecker evaluates trigger conditions for a user and generates
// analysis when warranted.
type InsightChecker interface {
	CheckAndTrigger(ctx context.Context, userID string) (*domain.InsightResultDTO, error)
}

// InsightSweepJob walks all users with active deals and runs the insight
// trigger evaluation for each. Users whose cache is still valid or whose
// deals trip no trigger conditions are skipped cheaply inside the check.
type InsightSweepJob struct {
	users   ActiveUserSource
	checker InsightChecker
	logger  *zap.Logger
	timeout time.Duration
}

// NewInsightSweepJob creates a new insight sweep job.
func NewInsightSweepJob(users ActiveUserSource, checker InsightChecker, logger *zap.Logger, timeout time.Duration) *InsightSweepJob {
	return &InsightSweepJob{
		users:   users,
		checker: checker,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the insight sweep.
// This is called by the scheduler according to the cron expression.
func (j *InsightSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting insight sweep job")

	userIDs, err := j.users.ListActiveUserIDs(ctx)
	if err != nil {
		j.logger.Error("insight sweep failed to list users",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	var triggered, skipped, failed int
	for _, userID := range userIDs {
		result, err := j.checker.CheckAndTrigger(ctx, userID)
		if err != nil {
			// Rate limiting and a disabled analysis backend are expected
			// operational states, not sweep failures.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				j.logger.Warn("insight sweep aborted", zap.Error(err))
				return
			}
			failed++
			j.logger.Warn("insight check failed for user",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}

		if result.Triggered && !result.FromCache {
			triggered++
		} else {
			skipped++
		}
	}

	j.logger.Info("completed insight sweep job",
		zap.Int("users", len(userIDs)),
		zap.Int("triggered", triggered),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}
