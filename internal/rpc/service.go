package rpc

import (
	"context"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/session"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

type ServiceOptions struct {
	Feed session.PriceFeedOptions
	Bulk session.BulkOrderOptions
	Live session.LiveTradingOptions
}

func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		Feed: session.DefaultPriceFeedOptions(),
		Live: session.DefaultLiveTradingOptions(),
	}
}

func ServiceOptionsFromConfig(cfg *config.Config) ServiceOptions {
	return ServiceOptions{
		Feed: session.PriceFeedOptions{
			Ticks:    cfg.FeedTicks,
			Interval: cfg.FeedInterval,
			MaxPrice: cfg.FeedMaxPrice,
		},
		Bulk: session.BulkOrderOptions{
			AcceptedAmountOnly: cfg.BulkAmountPolicy == config.AmountAcceptedOnly,
		},
		Live: session.LiveTradingOptions{
			Buffer: cfg.LiveOrderBuffer,
		},
	}
}

// Service routes each rpc to a fresh session. Sessions share nothing but the
// price store and the event publisher.
type Service struct {
	lookup *session.PriceLookup
	opts   ServiceOptions
	deps   session.Deps
}

func NewService(store interfaces.PriceStore, opts ServiceOptions, deps session.Deps) *Service {
	return &Service{
		lookup: session.NewPriceLookup(store, deps),
		opts:   opts,
		deps:   deps,
	}
}

func (s *Service) GetStockPrice(ctx context.Context, req *trading.StockRequest) (*trading.PriceQuote, error) {
	quote, err := s.lookup.Lookup(ctx, req.Symbol)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &quote, nil
}

func (s *Service) SubscribeStockPrice(req *trading.StockRequest, stream session.QuoteStream) error {
	feed, err := session.NewPriceFeed(req.Symbol, s.opts.Feed, s.deps)
	if err != nil {
		return toStatus(stream.Context(), err)
	}
	return toStatus(stream.Context(), feed.Run(stream))
}

func (s *Service) BulkStockOrder(stream session.SummaryStream) error {
	bulk := session.NewBulkOrder(s.opts.Bulk, s.deps)
	return toStatus(stream.Context(), bulk.Run(stream))
}

func (s *Service) LiveTrading(stream session.TradeStream) error {
	live := session.NewLiveTrading(s.opts.Live, s.deps)
	return toStatus(stream.Context(), live.Run(stream))
}
