package mocks

import (
	"context"
	"sync"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// MockMarketDataClient implements the MarketDataClient interface for testing
type MockMarketDataClient struct {
	mu               sync.Mutex
	subscribed       bool
	symbols          []string
	closed           bool
	tradesToGenerate []marketdata.Trade
	err              error
}

func NewMockMarketDataClient() *MockMarketDataClient {
	return &MockMarketDataClient{}
}

func (m *MockMarketDataClient) SetError(err error) *MockMarketDataClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockMarketDataClient) SetTrades(trades []marketdata.Trade) *MockMarketDataClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tradesToGenerate = trades
	return m
}

func (m *MockMarketDataClient) SubscribeToSymbols(ctx context.Context, tradeChan chan<- marketdata.Trade, symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.subscribed = true
	m.symbols = symbols

	if len(m.tradesToGenerate) > 0 {
		trades := m.tradesToGenerate
		go func() {
			for _, trade := range trades {
				select {
				case <-ctx.Done():
					return
				case tradeChan <- trade:
				}
			}
		}()
	}

	return nil
}

func (m *MockMarketDataClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockMarketDataClient) IsSubscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}

func (m *MockMarketDataClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockMarketDataClient) GetSymbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.symbols
}

// MockPriceStore implements PriceStore and PriceWriter in memory
type MockPriceStore struct {
	mu      sync.Mutex
	quotes  map[string]trading.PriceQuote
	saves   int
	lookups int
	closed  bool
	err     error
}

func NewMockPriceStore() *MockPriceStore {
	return &MockPriceStore{
		quotes: make(map[string]trading.PriceQuote),
	}
}

func (m *MockPriceStore) SetError(err error) *MockPriceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockPriceStore) Put(quote trading.PriceQuote) *MockPriceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[quote.Symbol] = quote
	return m
}

func (m *MockPriceStore) FindBySymbol(ctx context.Context, symbol string) (trading.PriceQuote, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	if m.err != nil {
		return trading.PriceQuote{}, false, m.err
	}
	quote, ok := m.quotes[symbol]
	return quote, ok, nil
}

func (m *MockPriceStore) SaveQuote(ctx context.Context, quote trading.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.saves++
	m.quotes[quote.Symbol] = quote
	return nil
}

func (m *MockPriceStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockPriceStore) GetQuote(symbol string) (trading.PriceQuote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quote, ok := m.quotes[symbol]
	return quote, ok
}

func (m *MockPriceStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MockPriceStore) Lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

// MockEventPublisher records published trade events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []trading.Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(event trading.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockEventPublisher) Events() []trading.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trading.Event(nil), m.events...)
}

// MockEventProducer implements the EventProducer interface for testing
type MockEventProducer struct {
	mu       sync.Mutex
	messages []trading.Event
	closed   bool
	err      error
}

func NewMockEventProducer() *MockEventProducer {
	return &MockEventProducer{
		messages: make([]trading.Event, 0),
	}
}

func (m *MockEventProducer) SetError(err error) *MockEventProducer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockEventProducer) Produce(ctx context.Context, event trading.Event) (partition int32, offset int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, 0, m.err
	}

	m.messages = append(m.messages, event)
	return 0, int64(len(m.messages) - 1), nil
}

func (m *MockEventProducer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockEventProducer) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockEventProducer) GetProducedMessages() []trading.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trading.Event(nil), m.messages...)
}
