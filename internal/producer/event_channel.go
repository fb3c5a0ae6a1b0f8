package producer

import (
	"sync"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// EventChannel is the session-facing event publisher. Publish never blocks:
// when the buffer is full the event is dropped and counted.
type EventChannel struct {
	mu     sync.RWMutex
	ch     chan trading.Event
	closed bool
	logger *logger.Logger
}

func NewEventChannel(buffer int, log *logger.Logger) *EventChannel {
	if buffer < 1 {
		buffer = 1
	}
	metrics.TradeEventsChanCapacity.Set(float64(buffer))

	return &EventChannel{
		ch:     make(chan trading.Event, buffer),
		logger: log.Component("event_channel"),
	}
}

func (c *EventChannel) Publish(event trading.Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		metrics.TradeEventsDroppedTotal.Inc()
		return
	}

	select {
	case c.ch <- event:
		metrics.TradeEventsChanSize.Set(float64(len(c.ch)))
	default:
		metrics.TradeEventsDroppedTotal.Inc()
		c.logger.Warn("event channel full, dropping trade event",
			logger.String("type", string(event.Type)),
			logger.String("session_id", event.SessionID))
	}
}

func (c *EventChannel) Events() <-chan trading.Event {
	return c.ch
}

// Close stops accepting events. Buffered events remain readable.
func (c *EventChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
