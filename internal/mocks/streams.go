package mocks

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// MockQuoteStream records quotes pushed by a price feed
type MockQuoteStream struct {
	ctx    context.Context
	mu     sync.Mutex
	quotes []trading.PriceQuote
	err    error
	onSend func(sent int)
}

func NewMockQuoteStream(ctx context.Context) *MockQuoteStream {
	return &MockQuoteStream{ctx: ctx}
}

func (m *MockQuoteStream) SetError(err error) *MockQuoteStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// OnSend registers a hook called after every successful Send with the number
// of quotes sent so far.
func (m *MockQuoteStream) OnSend(hook func(sent int)) *MockQuoteStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSend = hook
	return m
}

func (m *MockQuoteStream) Context() context.Context {
	return m.ctx
}

func (m *MockQuoteStream) Send(quote trading.PriceQuote) error {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return m.err
	}
	m.quotes = append(m.quotes, quote)
	sent, hook := len(m.quotes), m.onSend
	m.mu.Unlock()

	if hook != nil {
		hook(sent)
	}
	return nil
}

func (m *MockQuoteStream) Quotes() []trading.PriceQuote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trading.PriceQuote(nil), m.quotes...)
}

// MockOrderStream feeds orders to a session. Recv returns io.EOF after
// CloseSend, or the error passed to FailRecv.
type MockOrderStream struct {
	ctx     context.Context
	in      chan trading.Order
	once    sync.Once
	mu      sync.Mutex
	recvErr error
	waiting atomic.Int32
}

func NewMockOrderStream(ctx context.Context, buffer int) *MockOrderStream {
	return &MockOrderStream{
		ctx: ctx,
		in:  make(chan trading.Order, buffer),
	}
}

func (m *MockOrderStream) Context() context.Context {
	return m.ctx
}

// Push blocks until the session has room for the order.
func (m *MockOrderStream) Push(order trading.Order) {
	m.in <- order
}

func (m *MockOrderStream) CloseSend() {
	m.once.Do(func() { close(m.in) })
}

func (m *MockOrderStream) FailRecv(err error) {
	m.mu.Lock()
	m.recvErr = err
	m.mu.Unlock()
	m.CloseSend()
}

// Waiting reports how many Recv calls are currently blocked.
func (m *MockOrderStream) Waiting() int {
	return int(m.waiting.Load())
}

func (m *MockOrderStream) Recv() (trading.Order, error) {
	m.waiting.Add(1)
	defer m.waiting.Add(-1)

	select {
	case <-m.ctx.Done():
		return trading.Order{}, m.ctx.Err()
	case order, ok := <-m.in:
		if ok {
			return order, nil
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.recvErr != nil {
			return trading.Order{}, m.recvErr
		}
		return trading.Order{}, io.EOF
	}
}

// MockSummaryStream is the client-streaming side of a bulk order
type MockSummaryStream struct {
	*MockOrderStream
	mu        sync.Mutex
	summaries []trading.OrderSummary
	err       error
}

func NewMockSummaryStream(ctx context.Context, orders ...trading.Order) *MockSummaryStream {
	m := &MockSummaryStream{MockOrderStream: NewMockOrderStream(ctx, len(orders))}
	for _, order := range orders {
		m.Push(order)
	}
	return m
}

func (m *MockSummaryStream) SetError(err error) *MockSummaryStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockSummaryStream) SendAndClose(summary trading.OrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.summaries = append(m.summaries, summary)
	return nil
}

func (m *MockSummaryStream) Summaries() []trading.OrderSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trading.OrderSummary(nil), m.summaries...)
}

// MockTradeStream is a full-duplex live trading stream. Sent statuses are
// recorded and also delivered on Statuses().
type MockTradeStream struct {
	*MockOrderStream
	mu       sync.Mutex
	statuses []trading.TradeStatus
	out      chan trading.TradeStatus
	err      error
}

func NewMockTradeStream(ctx context.Context, buffer int) *MockTradeStream {
	return &MockTradeStream{
		MockOrderStream: NewMockOrderStream(ctx, buffer),
		out:             make(chan trading.TradeStatus, 1024),
	}
}

func (m *MockTradeStream) SetError(err error) *MockTradeStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockTradeStream) Send(status trading.TradeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.statuses = append(m.statuses, status)
	select {
	case m.out <- status:
	default:
	}
	return nil
}

func (m *MockTradeStream) Statuses() <-chan trading.TradeStatus {
	return m.out
}

func (m *MockTradeStream) Sent() []trading.TradeStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trading.TradeStatus(nil), m.statuses...)
}
