package session

import (
	"context"
	"fmt"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/shopspring/decimal"
)

type PriceFeedOptions struct {
	Ticks    int
	Interval time.Duration
	// MaxPrice is the exclusive upper bound of sampled prices.
	MaxPrice float64
}

func DefaultPriceFeedOptions() PriceFeedOptions {
	return PriceFeedOptions{
		Ticks:    10,
		Interval: time.Second,
		MaxPrice: 200,
	}
}

// PriceFeed pushes a fixed number of sampled quotes for one symbol.
type PriceFeed struct {
	id     string
	symbol string
	opts   PriceFeedOptions
	rand   func() float64
	clock  *clock
	logger *logger.Logger
}

func NewPriceFeed(symbol string, opts PriceFeedOptions, deps Deps) (*PriceFeed, error) {
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	deps = deps.withDefaults()
	id := newSessionID()

	return &PriceFeed{
		id:     id,
		symbol: symbol,
		opts:   opts,
		rand:   deps.Rand,
		clock:  &clock{now: deps.Now},
		logger: deps.Logger.Session(RPCSubscribePrice, id).With(logger.String("symbol", symbol)),
	}, nil
}

func (f *PriceFeed) ID() string { return f.id }

func (f *PriceFeed) Run(stream QuoteStream) error {
	ctx := stream.Context()
	tracker := metrics.StartSession(RPCSubscribePrice)
	f.logger.Info("price feed started",
		logger.Int("ticks", f.opts.Ticks),
		logger.Duration("interval", f.opts.Interval))

	sent, err := f.emit(ctx, stream)
	if err != nil {
		f.logger.Debug("price feed stopped early", logger.Int("quotes_sent", sent))
	}
	return finish(ctx, f.logger, tracker, err)
}

func (f *PriceFeed) emit(ctx context.Context, stream QuoteStream) (int, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for i := 0; i < f.opts.Ticks; i++ {
		if i > 0 {
			if timer == nil {
				timer = time.NewTimer(f.opts.Interval)
			} else {
				timer.Reset(f.opts.Interval)
			}
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-timer.C:
			}
		}
		// the wait may have raced with cancellation
		if err := ctx.Err(); err != nil {
			return i, err
		}

		quote := trading.PriceQuote{
			Symbol:    f.symbol,
			Price:     f.samplePrice(),
			Timestamp: f.clock.stamp(),
		}
		if err := stream.Send(quote); err != nil {
			return i, fmt.Errorf("send quote %d of %d: %w", i+1, f.opts.Ticks, err)
		}
		metrics.QuotesSentTotal.Inc()
		f.logger.Debug("quote sent",
			logger.Stringer("price", quote.Price),
			logger.Int("seq", i+1))
	}
	return f.opts.Ticks, nil
}

// samplePrice truncates to cents, which keeps the result below MaxPrice.
func (f *PriceFeed) samplePrice() decimal.Decimal {
	return decimal.NewFromFloat(f.rand() * f.opts.MaxPrice).Truncate(2)
}
