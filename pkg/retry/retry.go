package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/pkg/logger"
)

// Config holds retry configuration
type Config struct {
	// MaxRetries is the number of attempts after the first one
	MaxRetries int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases
	Multiplier float64
	// Jitter randomizes each delay by ±25%
	Jitter bool
	// Retryable reports whether err is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// DefaultConfig returns retry defaults for outgoing webhook calls
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, retries run out or ctx is done
func Do(ctx context.Context, cfg Config, operation string, fn func() error) error {
	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := fn()
		if err != nil && cfg.Retryable != nil && !cfg.Retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(cfg.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			logger.Warn("Operation failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempts),
				zap.Int("max_retries", cfg.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(err))
		}),
	)

	if err == nil {
		if attempts > 1 {
			logger.Info("Operation succeeded after retry",
				zap.String("operation", operation),
				zap.Int("attempts", attempts))
		}
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if ctx.Err() != nil || attempts == 1 {
		return err
	}

	logger.Error("Operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("attempts", attempts),
		zap.Error(err))
	return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

func (cfg Config) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	if cfg.Multiplier > 0 {
		b.Multiplier = cfg.Multiplier
	}
	b.RandomizationFactor = 0
	if cfg.Jitter {
		b.RandomizationFactor = 0.25
	}
	return b
}
