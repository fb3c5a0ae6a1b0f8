package interfaces

import (
	"context"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// PriceStore answers latest-price lookups. Implementations must tolerate
// concurrent callers.
type PriceStore interface {
	FindBySymbol(ctx context.Context, symbol string) (quote trading.PriceQuote, found bool, err error)
}

// PriceWriter keeps the latest quote per symbol up to date.
type PriceWriter interface {
	SaveQuote(ctx context.Context, quote trading.PriceQuote) error
	Close() error
}

// EventPublisher accepts trade events without blocking the caller.
type EventPublisher interface {
	Publish(event trading.Event)
}

type EventProducer interface {
	Produce(ctx context.Context, event trading.Event) (partition int32, offset int64, err error)
	Close() error
}

type MarketDataClient interface {
	SubscribeToSymbols(ctx context.Context, tradeChan chan<- marketdata.Trade, symbols []string) error
	Close() error
}
