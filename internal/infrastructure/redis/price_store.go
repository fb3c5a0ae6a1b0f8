package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "price:"

// Key is the cache key holding the latest quote of symbol.
func Key(symbol string) string {
	return keyPrefix + symbol
}

// PriceStore keeps the latest quote per symbol as a JSON value.
type PriceStore struct {
	client *redis.Client
}

func NewPriceStore(ctx context.Context, cfg *config.Config) (*PriceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisCacheAddr,
		Username: cfg.RedisCacheUser,
		Password: cfg.RedisCachePw,
		DB:       cfg.RedisCacheDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisCacheAddr, err)
	}

	return NewPriceStoreFromClient(client), nil
}

func NewPriceStoreFromClient(client *redis.Client) *PriceStore {
	return &PriceStore{
		client: client,
	}
}

func (r *PriceStore) FindBySymbol(ctx context.Context, symbol string) (trading.PriceQuote, bool, error) {
	data, err := r.client.Get(ctx, Key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return trading.PriceQuote{}, false, nil
	}
	if err != nil {
		return trading.PriceQuote{}, false, err
	}

	var quote trading.PriceQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return trading.PriceQuote{}, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return quote, true, nil
}

func (r *PriceStore) SaveQuote(ctx context.Context, quote trading.PriceQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return r.client.Set(ctx, Key(quote.Symbol), data, 0).Err()
}

func (r *PriceStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *PriceStore) Close() error {
	return r.client.Close()
}
