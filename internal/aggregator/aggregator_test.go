package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

func testTrades() []marketdata.Trade {
	now := time.Now()
	return []marketdata.Trade{
		{ID: 1, Symbol: "AAPL", Price: 150.50, Size: 100, Timestamp: now},
		{ID: 2, Symbol: "MSFT", Price: 300.75, Size: 50, Timestamp: now},
		{ID: 3, Symbol: "AAPL", Price: 151.25, Size: 75, Timestamp: now.Add(time.Second)},
		{ID: 4, Symbol: "GOOGL", Price: 2500.10, Size: 10, Timestamp: now},
	}
}

func newMockAggregator() (*TradeAggregator, *MockTickerFactory) {
	factory := NewMockTickerFactory()
	cfg := &config.Config{AggregatorInterval: time.Hour}
	return NewTradeAggregatorWithTicker(cfg, logger.NewNoOpLogger(), factory.NewTicker), factory
}

func TestTradeAggregator_WithMockTicker(t *testing.T) {
	aggregator, tickers := newMockAggregator()

	trades := testTrades()
	rawTradesChan := make(chan marketdata.Trade, len(trades))
	processedTradesChan := make(chan marketdata.Trade, len(trades))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- aggregator.Start(ctx, rawTradesChan, processedTradesChan)
	}()

	for _, trade := range trades {
		rawTradesChan <- trade
	}
	waitForTradesMap(t, aggregator, 3, time.Second)
	waitForLatestPrice(t, aggregator, "AAPL", 151.25, time.Second)

	if len(processedTradesChan) != 0 {
		t.Error("expected no trades to be processed before tick")
	}

	tickers.TickAll()

	bySymbol := make(map[string]marketdata.Trade)
	for _, trade := range receiveN(t, processedTradesChan, 3) {
		bySymbol[trade.Symbol] = trade
	}
	for _, symbol := range []string{"AAPL", "MSFT", "GOOGL"} {
		if _, ok := bySymbol[symbol]; !ok {
			t.Errorf("expected symbol %s in output", symbol)
		}
	}
	if got := bySymbol["AAPL"].Price; got != 151.25 {
		t.Errorf("expected AAPL price to be 151.25, got %f", got)
	}

	cancel()
	select {
	case err := <-errChan:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled error, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("aggregator did not shut down promptly")
	}
}

func TestTradeAggregator_PeriodicFlushWithMockTicker(t *testing.T) {
	aggregator, tickers := newMockAggregator()

	rawTradesChan := make(chan marketdata.Trade, 10)
	processedTradesChan := make(chan marketdata.Trade, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go aggregator.Start(ctx, rawTradesChan, processedTradesChan)

	trades := testTrades()

	rawTradesChan <- trades[0]
	waitForTradesMap(t, aggregator, 1, time.Second)
	tickers.TickAll()
	if batch := receiveN(t, processedTradesChan, 1); batch[0].Symbol != "AAPL" {
		t.Errorf("expected AAPL in first flush, got %s", batch[0].Symbol)
	}

	// an empty interval sends nothing
	tickers.TickAll()
	if len(processedTradesChan) != 0 {
		t.Errorf("expected empty flush, got %d trades", len(processedTradesChan))
	}

	rawTradesChan <- trades[2]
	rawTradesChan <- trades[3]
	waitForTradesMap(t, aggregator, 2, time.Second)
	tickers.TickAll()
	receiveN(t, processedTradesChan, 2)
}

func TestTradeAggregator_FlushOnCancel(t *testing.T) {
	aggregator, _ := newMockAggregator()

	rawTradesChan := make(chan marketdata.Trade, 10)
	processedTradesChan := make(chan marketdata.Trade, 10)
	for _, trade := range testTrades()[:2] {
		rawTradesChan <- trade
	}

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- aggregator.Start(ctx, rawTradesChan, processedTradesChan)
	}()

	waitForTradesMap(t, aggregator, 2, time.Second)
	cancel()

	select {
	case err := <-errChan:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled error, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("aggregator did not shut down promptly")
	}

	var flushed int
	for range processedTradesChan {
		flushed++
	}
	if flushed != 2 {
		t.Errorf("expected 2 trades on shutdown flush, got %d", flushed)
	}
}

func TestTradeAggregator_InputClosed(t *testing.T) {
	cfg := &config.Config{AggregatorInterval: 20 * time.Millisecond}
	aggregator := NewTradeAggregator(cfg, logger.NewNoOpLogger())

	trades := testTrades()
	rawTradesChan := make(chan marketdata.Trade, len(trades))
	processedTradesChan := make(chan marketdata.Trade, len(trades))
	for _, trade := range trades {
		rawTradesChan <- trade
	}
	close(rawTradesChan)

	if err := aggregator.Start(context.Background(), rawTradesChan, processedTradesChan); err != nil {
		t.Fatalf("aggregator returned error: %v", err)
	}

	latest := make(map[string]float64)
	for trade := range processedTradesChan {
		latest[trade.Symbol] = trade.Price
	}
	if len(latest) != 3 {
		t.Errorf("expected 3 symbols, got %d", len(latest))
	}
	if latest["AAPL"] != 151.25 {
		t.Errorf("expected AAPL price to be 151.25, got %f", latest["AAPL"])
	}
}

func getTradesMapSize(ta *TradeAggregator) int {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()
	return len(ta.latestTrades)
}

func waitForTradesMap(t *testing.T, ta *TradeAggregator, expectedSize int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if size := getTradesMapSize(ta); size >= expectedSize {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d trades in map, current size: %d",
		expectedSize, getTradesMapSize(ta))
}

func waitForLatestPrice(t *testing.T, ta *TradeAggregator, symbol string, price float64, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ta.mutex.Lock()
		got := ta.latestTrades[symbol].Price
		ta.mutex.Unlock()
		if got == price {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s at %f", symbol, price)
}

func receiveN(t *testing.T, ch <-chan marketdata.Trade, n int) []marketdata.Trade {
	t.Helper()
	trades := make([]marketdata.Trade, 0, n)
	for len(trades) < n {
		select {
		case trade := <-ch:
			trades = append(trades, trade)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d trades", len(trades), n)
		}
	}
	return trades
}
