package session

import (
	"context"
	"fmt"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// PriceLookup serves unary latest-price requests from the injected store.
// It keeps no state between calls.
type PriceLookup struct {
	store  interfaces.PriceStore
	logger *logger.Logger
}

func NewPriceLookup(store interfaces.PriceStore, deps Deps) *PriceLookup {
	deps = deps.withDefaults()
	return &PriceLookup{
		store:  store,
		logger: deps.Logger.Component("price_lookup"),
	}
}

func (p *PriceLookup) Lookup(ctx context.Context, symbol string) (trading.PriceQuote, error) {
	if symbol == "" {
		metrics.PriceLookupsTotal.WithLabelValues("invalid").Inc()
		return trading.PriceQuote{}, ErrInvalidSymbol
	}

	timer := metrics.NewTimer(metrics.PriceStoreDuration)
	quote, found, err := p.store.FindBySymbol(ctx, symbol)
	duration := timer.ObserveDuration()

	switch {
	case err != nil:
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		p.logger.Error("price store lookup failed",
			logger.String("symbol", symbol),
			logger.Error(err),
			logger.Duration("duration", duration))
		return trading.PriceQuote{}, fmt.Errorf("find price for %s: %w", symbol, err)
	case !found:
		metrics.PriceLookupsTotal.WithLabelValues("not_found").Inc()
		p.logger.Debug("no price for symbol", logger.String("symbol", symbol))
		return trading.PriceQuote{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	metrics.PriceLookupsTotal.WithLabelValues("found").Inc()
	p.logger.Debug("price lookup served",
		logger.String("symbol", symbol),
		logger.Stringer("price", quote.Price),
		logger.Duration("duration", duration))
	return quote, nil
}
