package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HTTPClient posts batches to a running server at a bounded rate.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewHTTPClient creates a client for baseURL. A non-positive rps disables
// pacing.
func NewHTTPClient(baseURL string, timeout time.Duration, rps float64) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		baseURL: baseURL,
	}
}

// Health checks GET /health.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health: %w", ErrServer, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrServer, resp.StatusCode)
	}
	return nil
}

// ScoreBatch posts scenarios to /predict/batch in chunks of batchSize and
// returns the predictions in order.
func (c *HTTPClient) ScoreBatch(ctx context.Context, scenarios []Scenario, batchSize int) ([]Prediction, error) {
	if batchSize < 1 {
		batchSize = max(len(scenarios), 1)
	}
	out := make([]Prediction, 0, len(scenarios))
	for start := 0; start < len(scenarios); start += batchSize {
		end := min(start+batchSize, len(scenarios))
		resp, err := c.postBatch(ctx, scenarios[start:end])
		if err != nil {
			return nil, err
		}
		if resp.Count != end-start || len(resp.Predictions) != end-start {
			return nil, fmt.Errorf("%w: sent %d shots, got %d predictions", ErrMismatch, end-start, len(resp.Predictions))
		}
		out = append(out, resp.Predictions...)
	}
	return out, nil
}

func (c *HTTPClient) postBatch(ctx context.Context, scenarios []Scenario) (BatchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return BatchResponse{}, err
	}

	body, err := json.Marshal(scenarios)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict/batch", bytes.NewReader(body))
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("%w: read body: %w", ErrServer, err)
	}
	if resp.StatusCode != http.StatusOK {
		return BatchResponse{}, fmt.Errorf("%w: batch returned %d: %s", ErrServer, resp.StatusCode, bytes.TrimSpace(data))
	}

	var out BatchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return BatchResponse{}, fmt.Errorf("%w: decode batch: %w", ErrServer, err)
	}
	return out, nil
}
