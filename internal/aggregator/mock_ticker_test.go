package aggregator

import (
	"sync"
	"time"
)

type MockTicker struct {
	c chan time.Time
}

func NewMockTicker() *MockTicker {
	return &MockTicker{c: make(chan time.Time)}
}

func (m *MockTicker) C() <-chan time.Time {
	return m.c
}

func (m *MockTicker) Stop() {}

// Tick blocks until the aggregator has taken the tick.
func (m *MockTicker) Tick() {
	m.c <- time.Now()
}

type MockTickerFactory struct {
	mutex   sync.Mutex
	tickers []*MockTicker
	created chan struct{}
}

func NewMockTickerFactory() *MockTickerFactory {
	return &MockTickerFactory{created: make(chan struct{}, 16)}
}

func (f *MockTickerFactory) NewTicker(d time.Duration) Ticker {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	ticker := NewMockTicker()
	f.tickers = append(f.tickers, ticker)
	f.created <- struct{}{}
	return ticker
}

func (f *MockTickerFactory) TickAll() {
	f.mutex.Lock()
	tickers := append([]*MockTicker(nil), f.tickers...)
	f.mutex.Unlock()

	for _, ticker := range tickers {
		ticker.Tick()
	}
}
