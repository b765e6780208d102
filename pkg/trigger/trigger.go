package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/pkg/httpclient"
	"github.com/getmentor/rating-api/pkg/logger"
	"github.com/getmentor/rating-api/pkg/metrics"
	"github.com/getmentor/rating-api/pkg/retry"
)

const asyncTimeout = 15 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RetryConfig controls redelivery of failed async calls
var RetryConfig = retry.DefaultConfig()

// StatusError is returned when the trigger responds with a non-2xx status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("trigger returned status %d", e.StatusCode)
}

// IsRetryable reports whether a failed call may succeed on redelivery.
// Transport failures, 429 and 5xx are retried; other statuses are final.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Event is the JSON body posted to a trigger URL
type Event struct {
	Type       string    `json:"type"`
	RecordID   string    `json:"recordId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// Call posts event to triggerURL and fails on any non-2xx response
func Call(ctx context.Context, triggerURL string, event Event, httpClient httpclient.Client) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode trigger event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, triggerURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call trigger: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// CallAsync posts event in the background, retrying per RetryConfig. An empty triggerURL is a no-op.
// Failures are logged and counted, never returned. The returned channel closes when delivery ends.
func CallAsync(triggerURL string, event Event, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		start := time.Now()
		cfg := RetryConfig
		cfg.Retryable = IsRetryable
		err := retry.Do(ctx, cfg, "trigger."+event.Type, func() error {
			return Call(ctx, triggerURL, event, httpClient)
		})
		duration := metrics.MeasureDuration(start)

		status := "success"
		fields := []zap.Field{zap.String("event", event.Type), zap.String("record_id", event.RecordID)}
		if err != nil {
			status = "error"
			fields = append(fields, zap.Error(err))
		}
		metrics.TriggerCalls.WithLabelValues(event.Type, status).Inc()
		logger.LogAPICall("trigger", event.Type, status, duration, fields...)
	}()

	return done
}
