package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
)

type RetryConfig struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	MaxElapsedTime      time.Duration
	RandomizationFactor float64
}

// DefaultWriteRetryConfig fits a latest-price write: a newer price will follow
// shortly, so retrying for long is pointless.
func DefaultWriteRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     5 * time.Millisecond,
		MaxInterval:         25 * time.Millisecond,
		Multiplier:          2.0,
		MaxElapsedTime:      75 * time.Millisecond,
		RandomizationFactor: 0.3,
	}
}

// ConnectRetryConfig is used while dialing backing stores at startup.
func ConnectRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     250 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		Multiplier:          2.0,
		MaxElapsedTime:      30 * time.Second,
		RandomizationFactor: 0.5,
	}
}

type RetryableOperation func(ctx context.Context) error

// Permanent wraps err so that it is returned without further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func newBackOff(cfg RetryConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.Multiplier = cfg.Multiplier
	b.MaxElapsedTime = cfg.MaxElapsedTime
	b.RandomizationFactor = cfg.RandomizationFactor
	b.Reset()
	return b
}

// RetryWithConfig runs op until it succeeds, returns a permanent error, the
// backoff gives up or ctx is done.
func RetryWithConfig(ctx context.Context, op RetryableOperation, cfg RetryConfig, log *logger.Logger) error {
	var attempt int
	start := time.Now()

	err := backoff.RetryNotify(
		func() error {
			attempt++
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return op(ctx)
		},
		backoff.WithContext(newBackOff(cfg), ctx),
		func(err error, d time.Duration) {
			log.Warn("retrying operation after failure",
				logger.Error(err),
				logger.Int("attempt", attempt),
				logger.Duration("backoff_duration", d),
				logger.Duration("elapsed", time.Since(start)))
		},
	)

	if err != nil {
		log.Error("all retry attempts failed",
			logger.Error(err),
			logger.Int("attempts", attempt),
			logger.Duration("total_duration", time.Since(start)))
	} else if attempt > 1 {
		log.Info("operation succeeded after retries",
			logger.Int("attempts", attempt),
			logger.Duration("total_duration", time.Since(start)))
	}
	return err
}

func RetryWithDefault(ctx context.Context, op RetryableOperation, log *logger.Logger) error {
	return RetryWithConfig(ctx, op, DefaultWriteRetryConfig(), log)
}
