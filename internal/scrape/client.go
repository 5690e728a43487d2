package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hagglehub/negotiation-api/internal/config"
	"go.uber.org/zap"
)

// Client fetches dealer listing pages. Many dealer sites refuse plain
// library user agents, so requests go out with a browser user agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
	logger     *zap.Logger
}

// NewClient creates a listing fetcher from configuration.
func NewClient(cfg *config.ScrapeConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		userAgent:  cfg.UserAgent,
		maxBody:    cfg.MaxBodyBytes,
		logger:     logger,
	}
}

// Fetch performs a GET for the listing URL and returns the body as
// text. Fetch failures propagate to the caller; extraction of whatever
// body comes back is the caller's concern.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid listing url: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("listing fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Listing fetch returned non-success status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("listing fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to read listing body: %w", err)
	}
	return string(body), nil
}
