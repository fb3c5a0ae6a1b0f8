package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

type LiveTradingOptions struct {
	// Buffer is the number of received orders that may wait for their verdict.
	Buffer int
}

func DefaultLiveTradingOptions() LiveTradingOptions {
	return LiveTradingOptions{Buffer: 64}
}

// LiveTrading answers every order of a bidirectional stream with one
// TradeStatus, in arrival order. Orders are read on their own goroutine so a
// status can be written while the next order is being received.
type LiveTrading struct {
	id     string
	opts   LiveTradingOptions
	events interfaces.EventPublisher
	clock  *clock
	logger *logger.Logger

	// set by the reader before aborted is closed
	inboundErr error
	aborted    chan struct{}
}

func NewLiveTrading(opts LiveTradingOptions, deps Deps) *LiveTrading {
	deps = deps.withDefaults()
	if opts.Buffer < 1 {
		opts.Buffer = 1
	}
	id := newSessionID()

	return &LiveTrading{
		id:      id,
		opts:    opts,
		events:  deps.Events,
		clock:   &clock{now: deps.Now},
		logger:  deps.Logger.Session(RPCLiveTrading, id),
		aborted: make(chan struct{}),
	}
}

func (l *LiveTrading) ID() string { return l.id }

func (l *LiveTrading) Run(stream TradeStream) error {
	ctx := stream.Context()
	tracker := metrics.StartSession(RPCLiveTrading)
	l.logger.Info("live trading session started", logger.Int("buffer", l.opts.Buffer))

	orders := make(chan trading.Order, l.opts.Buffer)
	done := make(chan struct{})
	defer close(done)

	go l.receive(stream, orders, done)

	answered, err := l.answer(ctx, stream, orders)
	l.logger.Debug("live trading session draining", logger.Int("answered", answered))
	return finish(ctx, l.logger, tracker, err)
}

// receive owns the inbound half. It closes orders when the caller finishes
// or the stream fails; done is closed when Run returns. A Recv still pending
// after Run returns is released by the stream context, which the transport
// cancels once the handler exits.
func (l *LiveTrading) receive(stream TradeStream, orders chan<- trading.Order, done <-chan struct{}) {
	defer close(orders)

	for n := 1; ; n++ {
		order, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			l.logger.Debug("caller finished sending orders", logger.Int("received", n-1))
			return
		}
		if err != nil {
			l.inboundErr = fmt.Errorf("receive order %d: %w", n, err)
			close(l.aborted)
			return
		}
		metrics.OrdersReceivedTotal.WithLabelValues(RPCLiveTrading).Inc()

		select {
		case orders <- order:
		case <-done:
			return
		}
	}
}

// answer owns the outbound half and the session clock.
func (l *LiveTrading) answer(ctx context.Context, stream TradeStream, orders <-chan trading.Order) (int, error) {
	answered := 0
	for order := range orders {
		select {
		case <-l.aborted:
			return answered, l.inboundErr
		case <-ctx.Done():
			return answered, ctx.Err()
		default:
		}

		verdict := Validate(order)
		status := trading.TradeStatus{
			OrderID:   order.OrderID,
			Status:    verdict.Status,
			Message:   verdict.Message,
			Timestamp: l.clock.stamp(),
		}
		if err := stream.Send(status); err != nil {
			return answered, fmt.Errorf("send status for order %q: %w", order.OrderID, err)
		}
		answered++
		metrics.TradeStatusTotal.WithLabelValues(string(status.Status)).Inc()

		l.logger.Debug("order answered",
			logger.String("order_id", order.OrderID),
			logger.String("symbol", order.Symbol),
			logger.Int64("quantity", order.Quantity),
			logger.String("status", string(status.Status)))

		l.events.Publish(trading.Event{
			Type:        trading.EventTradeStatus,
			SessionID:   l.id,
			TradeStatus: &status,
			Timestamp:   status.Timestamp,
		})
	}

	// orders is closed after aborted on the error path
	select {
	case <-l.aborted:
		return answered, l.inboundErr
	default:
		return answered, nil
	}
}
