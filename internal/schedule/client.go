package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ridematcher/internal/config"
	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// RunLister is the lookup contract the matching service consumes. Every
// call is treated as potentially slow and runs under the client's timeout.
type RunLister interface {
	ListRuns(ctx context.Context, fromStopID, toStopID, date string) ([]Run, error)
}

// Client fetches scheduled runs from the transit schedule HTTP API.
type Client struct {
	baseURL        string
	apiKey         string
	resultTimezone string
	limit          int
	httpClient     *http.Client
	logger         *logger.Logger
}

// NewClient creates a schedule API client with a bounded request timeout.
func NewClient(cfg *config.ScheduleConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		resultTimezone: cfg.ResultTimezone,
		limit:          cfg.SearchLimit,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}
}

// ListRuns queries the search endpoint for all runs between two stops on the
// given date (YYYY-MM-DD). Segments missing a thread or either timestamp are
// skipped, matching how the upstream API reports interval services.
func (c *Client) ListRuns(ctx context.Context, fromStopID, toStopID, date string) ([]Run, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("from", fromStopID)
	query.Set("to", toStopID)
	query.Set("date", date)
	query.Set("result_timezone", c.resultTimezone)
	query.Set("limit", strconv.Itoa(c.limit))

	endpoint := c.baseURL + "/search/?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schedule request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule API returned status %d", resp.StatusCode)
	}

	var payload apiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode schedule response: %w", err)
	}

	runs := make([]Run, 0, len(payload.Segments))
	for _, segment := range payload.Segments {
		if segment.Thread == nil || segment.Thread.UID == "" || segment.Departure == "" || segment.Arrival == "" {
			continue
		}
		departure, err := time.Parse(time.RFC3339, segment.Departure)
		if err != nil {
			c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Debug("Skipping segment with unparseable departure")
			continue
		}
		arrival, err := time.Parse(time.RFC3339, segment.Arrival)
		if err != nil {
			c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Debug("Skipping segment with unparseable arrival")
			continue
		}
		runs = append(runs, Run{
			ThreadID:  segment.Thread.UID,
			Departure: departure,
			Arrival:   arrival,
			FromID:    segment.From.Code,
			ToID:      segment.To.Code,
			FromLabel: segment.From.Title,
			ToLabel:   segment.To.Title,
		})
	}
	return runs, nil
}
