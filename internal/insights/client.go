package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hagglehub/negotiation-api/internal/config"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"go.uber.org/zap"
)

// ErrRateLimited signals that the analysis service rejected the call
// with HTTP 429. Callers surface it distinctly so the UI can back off
// instead of treating it as a hard failure.
var ErrRateLimited = errors.New("analysis service rate limited")

// Insight is one piece of negotiation advice in an analysis.
type Insight struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	NextStep    string `json:"next_step"`
	Type        string `json:"type"`
}

// Analysis is the free-form advice returned by the analysis service.
type Analysis struct {
	Summary  string    `json:"summary"`
	Insights []Insight `json:"insights"`
}

// AnalysisRequest is the payload sent to the analysis service.
type AnalysisRequest struct {
	Deals         []domain.Deal    `json:"deals"`
	Vehicles      []domain.Vehicle `json:"vehicles"`
	ForceRefresh  bool             `json:"force_refresh"`
	TriggerEvents []string         `json:"trigger_events,omitempty"`
}

// Analyzer is the external negotiation-advice collaborator. The service
// layer decides when to call it and how to cache the result.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error)
}

// Client calls the hosted analysis endpoint over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates an analysis client from configuration.
func NewClient(cfg *config.InsightsConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// Analyze posts the current deal set to the analysis service and
// decodes the advice payload. HTTP 429 maps to ErrRateLimited; other
// non-success statuses are ordinary errors. No retries happen here.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deal-analysis", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Analysis service rate limited the request")
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &analysis, nil
}
