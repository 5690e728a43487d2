package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubUserSource struct {
	ids []string
	err error
}

func (s *stubUserSource) ListActiveUserIDs(_ context.Context) ([]string, error) {
	return s.ids, s.err
}

type stubChecker struct {
	results map[string]*domain.InsightResultDTO
	errs    map[string]error
	calls   []string
}

func (s *stubChecker) CheckAndTrigger(_ context.Context, userID string) (*domain.InsightResultDTO, error) {
	s.calls = append(s.calls, userID)
	if err, ok := s.errs[userID]; ok {
		return nil, err
	}
	if r, ok := s.results[userID]; ok {
		return r, nil
	}
	return &domain.InsightResultDTO{Triggered: false}, nil
}

func TestInsightSweepJob_ChecksEveryUser(t *testing.T) {
	checker := &stubChecker{
		results: map[string]*domain.InsightResultDTO{
			"alice": {Triggered: true, FromCache: false},
			"bob":   {Triggered: true, FromCache: true},
		},
	}
	job := NewInsightSweepJob(
		&stubUserSource{ids: []string{"alice", "bob", "carol"}},
		checker,
		zap.NewNop(),
		time.Minute,
	)

	job.Run()

	assert.Equal(t, []string{"alice", "bob", "carol"}, checker.calls)
}

func TestInsightSweepJob_PerUserFailureDoesNotStopSweep(t *testing.T) {
	checker := &stubChecker{
		errs: map[string]error{"alice": errors.New("analysis backend down")},
	}
	job := NewInsightSweepJob(
		&stubUserSource{ids: []string{"alice", "bob"}},
		checker,
		zap.NewNop(),
		time.Minute,
	)

	job.Run()

	assert.Equal(t, []string{"alice", "bob"}, checker.calls)
}

func TestInsightSweepJob_AbortsWhenContextExpires(t *testing.T) {
	checker := &stubChecker{
		errs: map[string]error{"alice": context.DeadlineExceeded},
	}
	job := NewInsightSweepJob(
		&stubUserSource{ids: []string{"alice", "bob"}},
		checker,
		zap.NewNop(),
		time.Minute,
	)

	job.Run()

	// The deadline error on the first user ends the sweep immediately.
	assert.Equal(t, []string{"alice"}, checker.calls)
}

func TestInsightSweepJob_ListFailure(t *testing.T) {
	checker := &stubChecker{}
	job := NewInsightSweepJob(
		&stubUserSource{err: errors.New("db unavailable")},
		checker,
		zap.NewNop(),
		time.Minute,
	)

	job.Run()

	assert.Empty(t, checker.calls)
}

type stubPurger struct {
	purged int64
	err    error
	calls  int
}

func (s *stubPurger) PurgeExpired(_ context.Context) (int64, error) {
	s.calls++
	return s.purged, s.err
}

func TestCachePurgeJob_Run(t *testing.T) {
	purger := &stubPurger{purged: 3}
	job := NewCachePurgeJob(purger, zap.NewNop(), time.Minute)

	job.Run()
	assert.Equal(t, 1, purger.calls)

	// Errors are logged, not propagated; the scheduler keeps the job.
	failing := &stubPurger{err: errors.New("db unavailable")}
	NewCachePurgeJob(failing, zap.NewNop(), time.Minute).Run()
	assert.Equal(t, 1, failing.calls)
}
