// Package pipeline wires the price ingest stages: market data source,
// per-symbol aggregation and latest-price writes.
package pipeline

import (
	"context"
	"errors"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/aggregator"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/ingestor"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/processor"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
	"golang.org/x/sync/errgroup"
)

type Pipeline struct {
	ingestor   *ingestor.TradeIngestor
	aggregator *aggregator.TradeAggregator
	processor  *processor.TradeProcessor
	cfg        *config.Config
	logger     *logger.Logger
}

func New(source interfaces.MarketDataClient, writer interfaces.PriceWriter, cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		ingestor:   ingestor.NewTradeIngestor(source, cfg, log),
		aggregator: aggregator.NewTradeAggregator(cfg, log),
		processor:  processor.NewTradeProcessor(writer, log),
		cfg:        cfg,
		logger:     log.Component("pipeline"),
	}
}

// Run blocks until ctx is done or a stage fails. Each stage closes its output
// channel on return, so the stages downstream of a failure drain and stop.
func (p *Pipeline) Run(ctx context.Context) error {
	rawTradesChan := make(chan marketdata.Trade, p.cfg.RawTradesChanBuff)
	processedTradesChan := make(chan marketdata.Trade, p.cfg.ProcTradesChanBuff)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.ingestor.Start(gctx, rawTradesChan)
	})
	g.Go(func() error {
		err := p.aggregator.Start(gctx, rawTradesChan, processedTradesChan)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return p.processor.Start(gctx, processedTradesChan)
	})

	err := g.Wait()
	if err != nil {
		p.logger.Error("price ingest pipeline stopped", logger.Error(err))
	} else {
		p.logger.Info("price ingest pipeline stopped")
	}
	return err
}
