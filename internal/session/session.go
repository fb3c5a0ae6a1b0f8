// Package session implements the per-call state machines behind the four
// trading rpcs. Sessions are transport agnostic: the rpc layer adapts its
// stream handles to the small interfaces below and calls Run.
package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

const (
	RPCGetPrice       = "GetStockPrice"
	RPCSubscribePrice = "SubscribeStockPrice"
	RPCBulkOrder      = "BulkStockOrder"
	RPCLiveTrading    = "LiveTrading"
)

// QuoteStream is the outbound half of a price subscription.
type QuoteStream interface {
	Context() context.Context
	Send(trading.PriceQuote) error
}

// OrderStream yields the caller's orders. Recv returns io.EOF once the
// caller has finished sending.
type OrderStream interface {
	Context() context.Context
	Recv() (trading.Order, error)
}

type SummaryStream interface {
	OrderStream
	SendAndClose(trading.OrderSummary) error
}

// TradeStream is a full-duplex order stream. Recv and Send are called from
// different goroutines.
type TradeStream interface {
	OrderStream
	Send(trading.TradeStatus) error
}

// Deps are the collaborators shared by every session kind.
type Deps struct {
	Logger *logger.Logger
	Events interfaces.EventPublisher
	Now    func() time.Time
	// Rand returns a value in [0, 1).
	Rand func() float64
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.Float64
	}
	return d
}

type nopPublisher struct{}

func (nopPublisher) Publish(trading.Event) {}

func newSessionID() string {
	return uuid.NewString()
}

// clock hands out UTC timestamps that never go backwards within a session.
type clock struct {
	now  func() time.Time
	last time.Time
}

func (c *clock) stamp() time.Time {
	t := c.now().UTC()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// finish records the session outcome. Cancellation by the caller is a normal
// end and is not reported as a failure.
func finish(ctx context.Context, log *logger.Logger, tracker *metrics.SessionTracker, err error) error {
	switch {
	case err == nil:
		d := tracker.Finish(metrics.OutcomeCompleted)
		log.Info("session completed", logger.Duration("duration", d))
	case ctx.Err() != nil || isCancellation(err):
		d := tracker.Finish(metrics.OutcomeCanceled)
		log.Info("session canceled by caller", logger.Error(err), logger.Duration("duration", d))
	default:
		d := tracker.Finish(metrics.OutcomeFailed)
		log.Error("session failed", logger.Error(err), logger.Duration("duration", d))
	}
	return err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
