package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"golang.org/x/time/rate"
)

const (
	maxRetries      = 3
	maxRetryElapsed = 30 * time.Second
	maxErrorBody    = 512
)

// StatusError reports a model service response that carried no usable body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predictor API error: status %d: %s", e.StatusCode, e.Body)
}

// Client posts query parameters to the prediction model service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a model service client. requestsPerSec bounds the
// outgoing request rate, retries included; failed calls are retried with
// exponential backoff.
func NewClient(endpoint string, timeout time.Duration, requestsPerSec float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	burst := int(requestsPerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), burst),
		newBackOff: defaultBackOff,
		metrics:    metrics,
		logger:     logger,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryElapsed
	return backoff.WithMaxRetries(b, maxRetries)
}

// Predict sends params as a JSON object and decodes the model's response.
// A response body that decodes to a prediction is returned as-is whatever
// the HTTP status, so the service's own failure message reaches the caller.
// Transport errors and 5xx responses without such a body are retried.
func (c *Client) Predict(ctx context.Context, params domain.QueryParams) (domain.PredictionResponse, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("encode params: %w", err)
	}

	var result domain.PredictionResponse
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit: %w", err))
		}
		resp, err := c.doRequest(ctx, body)
		if err != nil {
			c.logger.Debug("predictor request failed", "attempt", attempt, "error", err)
			return err
		}
		result = resp
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return domain.PredictionResponse{}, err
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (domain.PredictionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.PredictionResponse{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.PredictorAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return domain.PredictionResponse{}, backoff.Permanent(fmt.Errorf("predict request: %w", err))
		}
		return domain.PredictionResponse{}, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("read response: %w", err)
	}

	decoded, decodeErr := domain.DecodePredictionResponse(data)
	if decodeErr == nil && decoded.Status != "" {
		return decoded, nil
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return domain.PredictionResponse{}, statusErr
		}
		return domain.PredictionResponse{}, backoff.Permanent(statusErr)
	}
	if decodeErr != nil {
		return domain.PredictionResponse{}, backoff.Permanent(decodeErr)
	}
	return domain.PredictionResponse{}, backoff.Permanent(errors.New("decode prediction response: missing status"))
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody])
	}
	return string(b)
}
