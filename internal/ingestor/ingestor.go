package ingestor

import (
	"context"
	"fmt"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

const milestoneEvery = 1000

type TradeIngestor struct {
	client  interfaces.MarketDataClient
	symbols []string
	buffer  int
	logger  *logger.Logger
}

func NewTradeIngestor(client interfaces.MarketDataClient, cfg *config.Config, log *logger.Logger) *TradeIngestor {
	return &TradeIngestor{
		client:  client,
		symbols: cfg.Symbols,
		buffer:  cfg.RawTradesChanBuff,
		logger:  log.Component("ingestor"),
	}
}

// Start subscribes to the configured symbols and forwards every trade to
// rawTradesChan until ctx is done. rawTradesChan is closed and the client
// unsubscribed on return.
func (ti *TradeIngestor) Start(ctx context.Context, rawTradesChan chan<- marketdata.Trade) error {
	defer close(rawTradesChan)

	ti.logger.Info("trade ingestor starting",
		logger.Any("symbols", ti.symbols),
		logger.Int("channel_buffer", ti.buffer))

	// the source writes here so received trades can be counted
	proxyChan := make(chan marketdata.Trade, ti.buffer)

	if err := ti.client.SubscribeToSymbols(ctx, proxyChan, ti.symbols); err != nil {
		ti.logger.Error("failed to subscribe to market data",
			logger.Error(err),
			logger.Any("symbols", ti.symbols))
		return fmt.Errorf("subscribe to %v: %w", ti.symbols, err)
	}
	ti.logger.Info("subscribed to market data")

	defer func() {
		if err := ti.client.Close(); err != nil {
			ti.logger.Warn("error closing market data client", logger.Error(err))
		}
	}()

	received := 0
	for {
		select {
		case <-ctx.Done():
			ti.logger.Info("ingestor received shutdown signal", logger.Int("total_received", received))
			return nil

		case trade := <-proxyChan:
			metrics.TradesReceivedTotal.Inc()
			received++
			if received%milestoneEvery == 0 {
				ti.logger.Info("trade processing milestone",
					logger.Int("trades_received", received),
					logger.String("symbol", trade.Symbol))
			}

			select {
			case rawTradesChan <- trade:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
