package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(envFrom(nil), logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.FeedTicks != 10 {
		t.Errorf("expected 10 feed ticks, got %d", cfg.FeedTicks)
	}
	if cfg.FeedInterval != time.Second {
		t.Errorf("expected 1s feed interval, got %v", cfg.FeedInterval)
	}
	if cfg.FeedMaxPrice != 200 {
		t.Errorf("expected max price 200, got %v", cfg.FeedMaxPrice)
	}
	if cfg.PriceStore != StoreRedis {
		t.Errorf("expected redis price store, got %s", cfg.PriceStore)
	}
	if cfg.BulkAmountPolicy != AmountAllOrders {
		t.Errorf("expected amount policy %q, got %q", AmountAllOrders, cfg.BulkAmountPolicy)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no kafka brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.GRPCAddr != ":9090" || cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected listen addresses: grpc=%s http=%s", cfg.GRPCAddr, cfg.HTTPAddr)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA"}) {
		t.Errorf("unexpected default symbols: %v", cfg.Symbols)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(envFrom(map[string]string{
		"FEED_TICKS":         "3",
		"FEED_INTERVAL_MS":   "1", // below minimum
		"FEED_MAX_PRICE":     "50.5",
		"LIVE_ORDER_BUFFER":  "8",
		"BULK_AMOUNT_POLICY": "ACCEPTED",
		"KAFKA_BROKERS":      "k1:9092, k2:9092,",
		"SYMBOLS":            " nvda ,, meta ",
		"REDIS_CACHE_DB":     "2",
		"MOCK_MARKET_DATA":   "true",
	}), logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.FeedTicks != 3 {
		t.Errorf("expected 3 feed ticks, got %d", cfg.FeedTicks)
	}
	if cfg.FeedInterval != FEED_INTERVAL_MS_MIN*time.Millisecond {
		t.Errorf("expected interval clamped to minimum, got %v", cfg.FeedInterval)
	}
	if cfg.FeedMaxPrice != 50.5 {
		t.Errorf("expected max price 50.5, got %v", cfg.FeedMaxPrice)
	}
	if cfg.LiveOrderBuffer != 8 {
		t.Errorf("expected live buffer 8, got %d", cfg.LiveOrderBuffer)
	}
	if cfg.BulkAmountPolicy != AmountAcceptedOnly {
		t.Errorf("expected accepted-only policy, got %q", cfg.BulkAmountPolicy)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"NVDA", "META"}) {
		t.Errorf("unexpected symbols: %v", cfg.Symbols)
	}
	if cfg.RedisCacheDB != 2 {
		t.Errorf("expected redis db 2, got %d", cfg.RedisCacheDB)
	}
	if !cfg.MockMarketData {
		t.Error("expected mock market data to be enabled")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bad_redis_db",
			env:  map[string]string{"REDIS_CACHE_DB": "zero"},
		},
		{
			name: "unknown_amount_policy",
			env:  map[string]string{"BULK_AMOUNT_POLICY": "some"},
		},
		{
			name: "unknown_price_store",
			env:  map[string]string{"PRICE_STORE": "mongo"},
		},
		{
			name: "postgres_without_dsn",
			env:  map[string]string{"PRICE_STORE": "postgres"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(envFrom(tc.env), logger.NewNoOpLogger()); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	cfg, err := LoadConfig(envFrom(map[string]string{
		"FEED_TICKS":        "-4",
		"FEED_MAX_PRICE":    "cheap",
		"LIVE_ORDER_BUFFER": "0",
	}), logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FeedTicks != FEED_TICKS_DEFAULT {
		t.Errorf("expected default ticks, got %d", cfg.FeedTicks)
	}
	if cfg.FeedMaxPrice != FEED_MAX_PRICE_DEFAULT {
		t.Errorf("expected default max price, got %v", cfg.FeedMaxPrice)
	}
	if cfg.LiveOrderBuffer != 1 {
		t.Errorf("expected live buffer clamped to 1, got %d", cfg.LiveOrderBuffer)
	}
}
