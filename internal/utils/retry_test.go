package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         2 * time.Millisecond,
		Multiplier:          2,
		MaxElapsedTime:      time.Second,
		RandomizationFactor: 0,
	}
}

func TestRetryWithConfig_EventuallySucceeds(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, fastConfig(), logger.NewNoOpLogger())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithConfig_PermanentError(t *testing.T) {
	bad := errors.New("bad request")
	attempts := 0
	err := RetryWithConfig(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(bad)
	}, fastConfig(), logger.NewNoOpLogger())

	if !errors.Is(err, bad) {
		t.Errorf("expected %v, got %v", bad, err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestRetryWithConfig_GivesUp(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxElapsedTime = 20 * time.Millisecond

	attempts := 0
	err := RetryWithConfig(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("down")
	}, cfg, logger.NewNoOpLogger())

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts < 2 {
		t.Errorf("expected several attempts, got %d", attempts)
	}
}

func TestRetryWithConfig_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := RetryWithConfig(ctx, func(ctx context.Context) error {
		attempts++
		return nil
	}, fastConfig(), logger.NewNoOpLogger())

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Errorf("expected no calls to the operation, got %d", attempts)
	}
}
