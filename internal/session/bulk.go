package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

type BulkOrderOptions struct {
	// AcceptedAmountOnly limits TotalAmount to accepted orders. By default
	// every received order contributes to it.
	AcceptedAmountOnly bool
}

// BulkOrder consumes a client stream of orders and answers with one summary
// once the caller closes its side.
type BulkOrder struct {
	id      string
	opts    BulkOrderOptions
	summary trading.OrderSummary
	events  interfaces.EventPublisher
	clock   *clock
	logger  *logger.Logger
}

func NewBulkOrder(opts BulkOrderOptions, deps Deps) *BulkOrder {
	deps = deps.withDefaults()
	id := newSessionID()

	return &BulkOrder{
		id:     id,
		opts:   opts,
		events: deps.Events,
		clock:  &clock{now: deps.Now},
		logger: deps.Logger.Session(RPCBulkOrder, id),
	}
}

func (b *BulkOrder) ID() string { return b.id }

func (b *BulkOrder) Run(stream SummaryStream) error {
	ctx := stream.Context()
	tracker := metrics.StartSession(RPCBulkOrder)
	b.logger.Info("bulk order session started")

	err := b.consume(stream)
	if err == nil {
		err = b.reply(stream)
	} else {
		b.logger.Debug("discarding partial summary",
			logger.Int("total_orders", b.summary.TotalOrders),
			logger.Int("success_count", b.summary.SuccessCount))
	}
	return finish(ctx, b.logger, tracker, err)
}

func (b *BulkOrder) consume(stream SummaryStream) error {
	for {
		order, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive order %d: %w", b.summary.TotalOrders+1, err)
		}
		metrics.OrdersReceivedTotal.WithLabelValues(RPCBulkOrder).Inc()
		b.add(order)
	}
}

func (b *BulkOrder) add(order trading.Order) {
	verdict := Validate(order)

	b.summary.TotalOrders++
	if verdict.Accepted {
		b.summary.SuccessCount++
	}
	if verdict.Accepted || !b.opts.AcceptedAmountOnly {
		b.summary.TotalAmount = b.summary.TotalAmount.Add(order.Amount())
	}
	metrics.TradeStatusTotal.WithLabelValues(string(verdict.Status)).Inc()

	b.logger.Debug("order received",
		logger.String("order_id", order.OrderID),
		logger.String("symbol", order.Symbol),
		logger.String("side", string(order.Side)),
		logger.Stringer("price", order.Price),
		logger.Int64("quantity", order.Quantity),
		logger.String("status", string(verdict.Status)))
}

func (b *BulkOrder) reply(stream SummaryStream) error {
	summary := b.summary
	if err := stream.SendAndClose(summary); err != nil {
		return fmt.Errorf("send order summary: %w", err)
	}

	b.logger.Info("order summary sent",
		logger.Int("total_orders", summary.TotalOrders),
		logger.Int("success_count", summary.SuccessCount),
		logger.Stringer("total_amount", summary.TotalAmount))

	b.events.Publish(trading.Event{
		Type:         trading.EventOrderSummary,
		SessionID:    b.id,
		OrderSummary: &summary,
		Timestamp:    b.clock.stamp(),
	})
	return nil
}
