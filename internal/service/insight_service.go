package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/hagglehub/negotiation-api/internal/config"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/insights"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Trigger reason identifiers attached to analysis requests.
const (
	TriggerQuoteExpiring = "quote_expiring"
	TriggerQuoteExpired  = "quote_expired"
	TriggerStaleDeal     = "stale_deal"
)

const (
	quoteExpiringWindowDays = 3
	staleDealThresholdDays  = 7
)

// TriggerResult is the outcome of evaluating a user's active deals for
// urgency conditions.
type TriggerResult struct {
	ShouldTrigger bool
	Triggers      []string
	UrgencyLevel  string
}

// InsightService gates calls to the billed analysis service: cache-hit
// short-circuit, urgency-based auto-trigger, manual force refresh.
type InsightService struct {
	cacheRepo *repository.InsightCacheRepository
	dealRepo  *repository.DealRepository
	analyzer  insights.Analyzer
	cfg       *config.InsightsConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewInsightService(
	cacheRepo *repository.InsightCacheRepository,
	dealRepo *repository.DealRepository,
	analyzer insights.Analyzer,
	cfg *config.InsightsConfig,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		cacheRepo: cacheRepo,
		dealRepo:  dealRepo,
		analyzer:  analyzer,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EvaluateTriggers inspects active deals for urgency conditions.
// Expiring and expired quotes are high priority; stale contact is
// medium. Deals outside the active statuses never contribute.
func (s *InsightService) EvaluateTriggers(deals []domain.Deal, now time.Time) TriggerResult {
	var result TriggerResult
	seen := make(map[string]bool)
	high := false

	add := func(reason string, isHigh bool) {
		result.ShouldTrigger = true
		if isHigh {
			high = true
		}
		if !seen[reason] {
			seen[reason] = true
			result.Triggers = append(result.Triggers, reason)
		}
	}

	for i := range deals {
		deal := &deals[i]
		if !deal.Status.IsActive() {
			continue
		}

		if deal.QuoteExpires != nil {
			days := daysBetween(now, *deal.QuoteExpires)
			if days < 0 {
				add(TriggerQuoteExpired, true)
			} else if days <= quoteExpiringWindowDays {
				add(TriggerQuoteExpiring, true)
			}
		}

		lastContact := deal.LastContactDate
		if lastContact == nil {
			lastContact = &deal.CreatedAt
		}
		if daysBetween(*lastContact, now) >= staleDealThresholdDays {
			add(TriggerStaleDeal, false)
		}
	}

	if result.ShouldTrigger {
		if high {
			result.UrgencyLevel = "high"
		} else {
			result.UrgencyLevel = "medium"
		}
	}
	return result
}

// CheckAndTrigger serves a cached analysis when one is still valid,
// otherwise evaluates triggers and calls the analysis service only
// when an urgency condition exists. Fresh results are cached with the
// configured TTL from completion time.
func (s *InsightService) CheckAndTrigger(ctx context.Context, userID string) (*domain.InsightResultDTO, error) {
	now := s.now()

	cached, err := s.cacheRepo.GetLatestValid(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check insight cache: %w", err)
	}
	if cached != nil {
		dto := mapper.ToInsightResultDTO(cached, true)
		return &dto, nil
	}

	deals, err := s.dealRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active deals: %w", err)
	}

	trigger := s.EvaluateTriggers(deals, now)
	if !trigger.ShouldTrigger {
		return &domain.InsightResultDTO{Triggered: false}, nil
	}

	return s.analyze(ctx, userID, deals, trigger, false)
}

// ForceRefresh bypasses the cache-hit short-circuit and the trigger
// gate, but the result still lands in the cache through the same path.
func (s *InsightService) ForceRefresh(ctx context.Context, userID string) (*domain.InsightResultDTO, error) {
	deals, err := s.dealRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active deals: %w", err)
	}

	trigger := s.EvaluateTriggers(deals, s.now())
	return s.analyze(ctx, userID, deals, trigger, true)
}

// Latest returns the user's newest analysis regardless of expiry, or
// nil when none has ever been produced.
func (s *InsightService) Latest(ctx context.Context, userID string) (*domain.InsightResultDTO, error) {
	entry, err := s.cacheRepo.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest analysis: %w", err)
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	dto := mapper.ToInsightResultDTO(entry, true)
	dto.FromCache = entry.CacheExpiresAt.After(s.now())
	return &dto, nil
}

// PurgeExpired prunes cache rows that expired before now. Reads
// already filter on expiry; this only bounds table growth.
func (s *InsightService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.cacheRepo.PurgeExpired(ctx, s.now())
}

func (s *InsightService) analyze(ctx context.Context, userID string, deals []domain.Deal, trigger TriggerResult, force bool) (*domain.InsightResultDTO, error) {
	if !s.cfg.Enabled {
		return nil, ErrInsightsDisabled
	}

	vehicles := make([]domain.Vehicle, 0, len(deals))
	dealIDs := make([]string, 0, len(deals))
	for i := range deals {
		dealIDs = append(dealIDs, deals[i].ID.String())
		if deals[i].Vehicle != nil {
			vehicles = append(vehicles, *deals[i].Vehicle)
		}
	}

	analysis, err := s.analyzer.Analyze(ctx, insights.AnalysisRequest{
		Deals:         deals,
		Vehicles:      vehicles,
		ForceRefresh:  force,
		TriggerEvents: trigger.Triggers,
	})
	if err != nil {
		// Rate limiting and other analysis failures propagate as-is;
		// retry policy belongs to the caller.
		return nil, err
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis payload: %w", err)
	}

	completed := s.now()
	entry := &domain.InsightCacheEntry{
		UserID:         userID,
		DealIDs:        pq.StringArray(dealIDs),
		AnalysisData:   string(payload),
		Triggers:       pq.StringArray(trigger.Triggers),
		CacheExpiresAt: completed.Add(s.cfg.CacheTTL()),
	}
	if err := s.cacheRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to cache analysis: %w", err)
	}

	s.logger.Info("Stored fresh deal analysis",
		zap.String("user_id", userID),
		zap.Strings("triggers", trigger.Triggers),
		zap.Bool("forced", force),
	)

	dto := mapper.ToInsightResultDTO(entry, false)
	dto.UrgencyLevel = trigger.UrgencyLevel
	return &dto, nil
}

// daysBetween counts whole days from a to b, negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}
