package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CachePurgeJobName is the name of the insight cache purge job
const CachePurgeJobName = "insight_cache_purge"

// CachePurger removes expired insight cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CachePurgeJob deletes insight cache entries whose TTL has lapsed.
type CachePurgeJob struct {
	purger  CachePurger
	logger  *zap.Logger
	timeout time.Duration
}

// NewCachePurgeJob creates a new cache purge job.
func NewCachePurgeJob(purger CachePurger, logger *zap.Logger, timeout time.Duration) *CachePurgeJob {
	return &CachePurgeJob{
		purger:  purger,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the cache purge.
func (j *CachePurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	purged, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("insight cache purge failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("completed insight cache purge",
		zap.Int64("purged", purged),
		zap.Duration("duration", time.Since(start)))
}
