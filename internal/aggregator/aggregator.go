package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// TradeAggregator keeps only the latest trade per symbol and hands the
// survivors downstream on every tick, so the price store sees at most one
// write per symbol per interval.
type TradeAggregator struct {
	mutex        sync.Mutex
	latestTrades map[string]marketdata.Trade
	interval     time.Duration
	newTicker    TickerFactory
	logger       *logger.Logger
}

func NewTradeAggregator(cfg *config.Config, log *logger.Logger) *TradeAggregator {
	return NewTradeAggregatorWithTicker(cfg, log, NewTimeTicker)
}

func NewTradeAggregatorWithTicker(cfg *config.Config, log *logger.Logger, newTicker TickerFactory) *TradeAggregator {
	return &TradeAggregator{
		latestTrades: make(map[string]marketdata.Trade),
		interval:     cfg.AggregatorInterval,
		newTicker:    newTicker,
		logger:       log.Component("aggregator"),
	}
}

// Start aggregates until rawTradesChan is closed or ctx is done, then flushes
// what is left and closes processedTradesChan.
func (ta *TradeAggregator) Start(
	ctx context.Context,
	rawTradesChan <-chan marketdata.Trade,
	processedTradesChan chan<- marketdata.Trade,
) error {
	defer close(processedTradesChan)

	ticker := ta.newTicker(ta.interval)
	defer ticker.Stop()

	ta.logger.Info("trade aggregator starting", logger.Duration("interval", ta.interval))

	for {
		select {
		case trade, ok := <-rawTradesChan:
			if !ok {
				ta.logger.Info("raw trades channel closed, final flush")
				ta.flush(ctx, processedTradesChan)
				return nil
			}
			ta.mutex.Lock()
			ta.latestTrades[trade.Symbol] = trade
			ta.mutex.Unlock()

		case <-ticker.C():
			ta.flush(ctx, processedTradesChan)

		case <-ctx.Done():
			ta.drain(processedTradesChan)
			return ctx.Err()
		}
	}
}

func (ta *TradeAggregator) take() []marketdata.Trade {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()

	if len(ta.latestTrades) == 0 {
		return nil
	}
	trades := make([]marketdata.Trade, 0, len(ta.latestTrades))
	for _, trade := range ta.latestTrades {
		trades = append(trades, trade)
	}
	ta.latestTrades = make(map[string]marketdata.Trade)
	return trades
}

func (ta *TradeAggregator) flush(ctx context.Context, out chan<- marketdata.Trade) {
	for _, trade := range ta.take() {
		select {
		case out <- trade:
			metrics.TradesAggregatedTotal.Inc()
		case <-ctx.Done():
			return
		}
	}
}

// drain is the shutdown flush: the consumer may already be gone, so it never
// blocks.
func (ta *TradeAggregator) drain(out chan<- marketdata.Trade) {
	for _, trade := range ta.take() {
		select {
		case out <- trade:
			metrics.TradesAggregatedTotal.Inc()
		default:
			metrics.TradesDroppedTotal.Inc()
			ta.logger.Warn("processed trades channel full on shutdown, dropping trade",
				logger.String("symbol", trade.Symbol))
		}
	}
}
