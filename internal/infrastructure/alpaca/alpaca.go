package alpaca

import (
	"context"
	"fmt"
	"sync"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

const feed = "iex"

// Client streams live trades from the alpaca IEX feed. Credentials are read
// by the alpaca SDK from APCA_API_KEY_ID and APCA_API_SECRET_KEY.
type Client struct {
	client  *stream.StocksClient
	mu      sync.Mutex
	symbols []string
	logger  *logger.Logger
}

func NewClient(ctx context.Context, log *logger.Logger) (*Client, error) {
	client := stream.NewStocksClient(feed)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to alpaca %s feed: %w", feed, err)
	}

	return &Client{
		client: client,
		logger: log.Component("alpaca"),
	}, nil
}

func toTrade(t stream.Trade) marketdata.Trade {
	return marketdata.Trade{
		ID:        t.ID,
		Symbol:    t.Symbol,
		Price:     t.Price,
		Size:      t.Size,
		Timestamp: t.Timestamp,
	}
}

// SubscribeToSymbols forwards trades to tradeChan until ctx is done. The SDK
// handler must not block, so a trade is dropped when tradeChan is full.
func (c *Client) SubscribeToSymbols(ctx context.Context, tradeChan chan<- marketdata.Trade, symbols []string) error {
	c.mu.Lock()
	c.symbols = symbols
	c.mu.Unlock()

	return c.client.SubscribeToTrades(func(t stream.Trade) {
		trade := toTrade(t)
		select {
		case <-ctx.Done():
		case tradeChan <- trade:
		default:
			metrics.TradesDroppedTotal.Inc()
			c.logger.Warn("trade channel full, dropping trade",
				logger.String("symbol", trade.Symbol),
				logger.Int64("trade_id", trade.ID))
		}
	}, symbols...)
}

func (c *Client) Close() error {
	c.mu.Lock()
	symbols := c.symbols
	c.mu.Unlock()

	if len(symbols) == 0 {
		return nil
	}
	return c.client.UnsubscribeFromTrades(symbols...)
}
