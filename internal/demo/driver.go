// Package demo drives the four trading rpcs the way a first-time client
// would: one price subscription, a small bulk order and a paced live
// trading session.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/rpc"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/shopspring/decimal"
)

const (
	DefaultLiveOrders   = 10
	DefaultLiveInterval = 560 * time.Millisecond
)

func BulkOrders() []trading.Order {
	return []trading.Order{
		{OrderID: "1", Symbol: "AAPL", Side: trading.SideBuy, Price: decimal.RequireFromString("54.1"), Quantity: 45},
		{OrderID: "2", Symbol: "GOOGL", Side: trading.SideSell, Price: decimal.RequireFromString("120.5"), Quantity: 30},
		{OrderID: "3", Symbol: "MSFT", Side: trading.SideBuy, Price: decimal.RequireFromString("200.0"), Quantity: 10},
		{OrderID: "4", Symbol: "TSLA", Side: trading.SideBuy, Price: decimal.RequireFromString("300.5"), Quantity: 15},
		{OrderID: "5", Symbol: "NFLX", Side: trading.SideSell, Price: decimal.RequireFromString("150.0"), Quantity: 25},
	}
}

// LiveOrder is the i-th order of the live session. ORDER-0 has quantity 0
// and is always rejected.
func LiveOrder(i int) trading.Order {
	return trading.Order{
		OrderID:  fmt.Sprintf("ORDER-%d", i),
		Symbol:   "AAPL",
		Side:     trading.SideBuy,
		Price:    decimal.NewFromInt(int64(105*i + i)),
		Quantity: int64(10 * i),
	}
}

type Driver struct {
	client       *rpc.Client
	liveOrders   int
	liveInterval time.Duration
	logger       *logger.Logger
}

func NewDriver(client *rpc.Client, log *logger.Logger) *Driver {
	return &Driver{
		client:       client,
		liveOrders:   DefaultLiveOrders,
		liveInterval: DefaultLiveInterval,
		logger:       log.Component("demo"),
	}
}

// WithLivePacing overrides the number of live orders and the gap between them.
func (d *Driver) WithLivePacing(orders int, interval time.Duration) *Driver {
	d.liveOrders = orders
	d.liveInterval = interval
	return d
}

func (d *Driver) LookupPrice(ctx context.Context, symbol string) (trading.PriceQuote, error) {
	quote, err := d.client.GetStockPrice(ctx, symbol)
	if err != nil {
		return trading.PriceQuote{}, fmt.Errorf("get price of %s: %w", symbol, err)
	}
	d.logger.Info("stock price",
		logger.String("symbol", quote.Symbol),
		logger.Stringer("price", quote.Price),
		logger.Time("timestamp", quote.Timestamp))
	return quote, nil
}

// Subscribe prints every quote of a subscription and returns them once the
// server completes the stream.
func (d *Driver) Subscribe(ctx context.Context, symbol string) ([]trading.PriceQuote, error) {
	sub, err := d.client.SubscribeStockPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", symbol, err)
	}

	var quotes []trading.PriceQuote
	for {
		quote, err := sub.Recv()
		if errors.Is(err, io.EOF) {
			d.logger.Info("stock price updates completed", logger.Int("quotes", len(quotes)))
			return quotes, nil
		}
		if err != nil {
			return quotes, fmt.Errorf("receive quote: %w", err)
		}
		quotes = append(quotes, quote)
		d.logger.Info("stock price update",
			logger.String("symbol", quote.Symbol),
			logger.Stringer("price", quote.Price),
			logger.Time("timestamp", quote.Timestamp))
	}
}

func (d *Driver) PlaceBulkOrder(ctx context.Context, orders []trading.Order) (trading.OrderSummary, error) {
	stream, err := d.client.BulkStockOrder(ctx)
	if err != nil {
		return trading.OrderSummary{}, fmt.Errorf("open bulk order stream: %w", err)
	}

	for _, order := range orders {
		if err := stream.Send(order); err != nil {
			return trading.OrderSummary{}, fmt.Errorf("send order %s: %w", order.OrderID, err)
		}
	}

	summary, err := stream.CloseAndRecv()
	if err != nil {
		return trading.OrderSummary{}, fmt.Errorf("receive order summary: %w", err)
	}
	d.logger.Info("order summary received",
		logger.Int("total_orders", summary.TotalOrders),
		logger.Int("success_count", summary.SuccessCount),
		logger.Stringer("total_amount", summary.TotalAmount))
	return summary, nil
}

// LiveTrade sends the paced live orders while printing replies as they
// arrive, and returns every status once the server completes.
func (d *Driver) LiveTrade(ctx context.Context) ([]trading.TradeStatus, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := d.client.LiveTrading(ctx)
	if err != nil {
		return nil, fmt.Errorf("open live trading stream: %w", err)
	}

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- d.sendLive(ctx, stream)
	}()

	var statuses []trading.TradeStatus
	for {
		status, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return statuses, fmt.Errorf("receive trade status: %w", err)
		}
		statuses = append(statuses, status)
		d.logger.Info("server response",
			logger.String("order_id", status.OrderID),
			logger.String("status", string(status.Status)),
			logger.String("message", status.Message))
	}

	if err := <-sendErr; err != nil {
		return statuses, err
	}
	d.logger.Info("server response completed", logger.Int("statuses", len(statuses)))
	return statuses, nil
}

func (d *Driver) sendLive(ctx context.Context, stream *rpc.LiveTradingStream) error {
	ticker := time.NewTicker(d.liveInterval)
	defer ticker.Stop()

	for i := 0; i < d.liveOrders; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := stream.Send(LiveOrder(i)); err != nil {
			return fmt.Errorf("send live order %d: %w", i, err)
		}
	}
	return stream.CloseSend()
}

// Run performs the full demo in order.
func (d *Driver) Run(ctx context.Context, symbol string) error {
	if _, err := d.Subscribe(ctx, symbol); err != nil {
		return err
	}
	if _, err := d.PlaceBulkOrder(ctx, BulkOrders()); err != nil {
		return err
	}
	_, err := d.LiveTrade(ctx)
	return err
}
