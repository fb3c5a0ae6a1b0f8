package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/utils"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

const (
	writeTimeout    = 100 * time.Millisecond
	reportingPeriod = 30 * time.Second
)

// TradeProcessor turns aggregated trades into latest-price writes. Trades are
// written one at a time so an older price never overtakes a newer one for
// the same symbol.
type TradeProcessor struct {
	writer interfaces.PriceWriter
	retry  utils.RetryConfig
	logger *logger.Logger

	processed int
	succeeded int
	failed    int
}

func NewTradeProcessor(writer interfaces.PriceWriter, log *logger.Logger) *TradeProcessor {
	return &TradeProcessor{
		writer: writer,
		retry:  utils.DefaultWriteRetryConfig(),
		logger: log.Component("processor"),
	}
}

func (tp *TradeProcessor) Start(ctx context.Context, tradeChannel <-chan marketdata.Trade) error {
	tp.logger.Info("trade processor starting",
		logger.Int("input_channel_buffer", cap(tradeChannel)))

	defer func() {
		tp.logger.Info("processor final statistics",
			logger.Int("trades_processed", tp.processed),
			logger.Int("successful", tp.succeeded),
			logger.Int("errors", tp.failed),
			logger.Int("success_rate_pct", calculateSuccessRate(tp.succeeded, tp.failed)))
	}()

	lastReport := time.Now()
	for {
		select {
		case trade, ok := <-tradeChannel:
			if !ok {
				tp.logger.Info("trade channel closed, processor done")
				return nil
			}
			tp.handle(ctx, trade)

			if time.Since(lastReport) >= reportingPeriod {
				tp.logger.Info("processor statistics",
					logger.Int("trades_processed", tp.processed),
					logger.Int("success_rate_pct", calculateSuccessRate(tp.succeeded, tp.failed)),
					logger.Int("errors", tp.failed),
					logger.Duration("period", reportingPeriod))
				lastReport = time.Now()
			}

		case <-ctx.Done():
			tp.logger.Info("processor received shutdown signal")
			return nil
		}
	}
}

func (tp *TradeProcessor) handle(ctx context.Context, trade marketdata.Trade) {
	tp.processed++

	start := time.Now()
	if err := tp.storeQuote(ctx, trade); err != nil {
		tp.failed++
		metrics.QuoteStoreErrorsTotal.Inc()
		tp.logger.Error("trade processing failed",
			logger.Error(err),
			logger.String("symbol", trade.Symbol),
			logger.Float64("price", trade.Price),
			logger.Duration("duration", time.Since(start)))
		return
	}

	tp.succeeded++
	metrics.QuotesStoredTotal.Inc()
	tp.logger.Debug("latest price stored",
		logger.String("symbol", trade.Symbol),
		logger.Float64("price", trade.Price),
		logger.Duration("duration", time.Since(start)))
}

func (tp *TradeProcessor) storeQuote(ctx context.Context, trade marketdata.Trade) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	quote := trade.Quote()
	op := func(ctx context.Context) error {
		timer := metrics.NewTimer(metrics.PriceStoreDuration)
		defer timer.ObserveDuration()
		return tp.writer.SaveQuote(ctx, quote)
	}

	if err := utils.RetryWithConfig(ctx, op, tp.retry, tp.logger); err != nil {
		return fmt.Errorf("store latest price of %s: %w", trade.Symbol, err)
	}
	return nil
}

func calculateSuccessRate(success, failure int) int {
	total := success + failure
	if total == 0 {
		return 100
	}
	return (success * 100) / total
}
