package mockdata

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/marketdata"
)

const tickInterval = 10 * time.Millisecond

type Config struct {
	TradesPerSecond int
	PriceVolatility float64
	SizeVariability float64
	EnableJitter    bool
	// Seed makes the generated prices reproducible when non-zero.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		TradesPerSecond: 50,
		PriceVolatility: 0.005,
		SizeVariability: 0.7,
		EnableJitter:    true,
	}
}

var basePrices = map[string]float64{
	"AAPL": 180.25, "MSFT": 325.5, "GOOG": 142.7, "AMZN": 178.3,
	"TSLA": 237.45, "META": 324.6, "NVDA": 880.3, "NFLX": 600.75,
	"IBM": 174.2, "INTC": 43.8, "AMD": 172.5, "ORCL": 120.4,
}

// Generator is a market data source producing a random walk per symbol. It
// stands in for the alpaca feed when MOCK_MARKET_DATA is set.
type Generator struct {
	config Config
	logger *logger.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	nextID int64
	base   map[string]float64
	prices map[string]float64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGenerator(config Config, log *logger.Logger) *Generator {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	if config.TradesPerSecond <= 0 {
		config.TradesPerSecond = DefaultConfig().TradesPerSecond
	}

	return &Generator{
		config: config,
		logger: log.Component("mock_market_data"),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		nextID: 1,
		base:   make(map[string]float64),
		prices: make(map[string]float64),
	}
}

// SubscribeToSymbols starts generating trades for symbols and returns
// immediately. Generation stops when ctx is done or Close is called.
func (g *Generator) SubscribeToSymbols(ctx context.Context, tradeChan chan<- marketdata.Trade, symbols []string) error {
	if len(symbols) == 0 {
		return errors.New("no symbols to generate trades for")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		return errors.New("generator already running")
	}

	for _, symbol := range symbols {
		price, ok := basePrices[symbol]
		if !ok {
			price = 50.0 + g.rng.Float64()*450.0
		}
		g.base[symbol] = price
		g.prices[symbol] = price
	}

	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})
	go g.run(ctx, tradeChan, append([]string(nil), symbols...))

	g.logger.Info("mock data generator started",
		logger.Int("trades_per_sec", g.config.TradesPerSecond),
		logger.Any("symbols", symbols))
	return nil
}

func (g *Generator) run(ctx context.Context, tradeChan chan<- marketdata.Trade, symbols []string) {
	defer close(g.done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var (
		generated int
		debt      float64
		perTick   = float64(g.config.TradesPerSecond) * tickInterval.Seconds()
	)

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("mock data generator shutting down",
				logger.Int("total_trades_generated", generated))
			return

		case <-ticker.C:
			debt += perTick
			n := int(debt)
			debt -= float64(n)

			if g.config.EnableJitter && n > 0 {
				n = int(math.Max(1, float64(n)*(0.8+g.float64()*0.4)))
			}

			for i := 0; i < n; i++ {
				trade := g.generateTrade(symbols)
				select {
				case tradeChan <- trade:
					generated++
					metrics.MockTradesGeneratedTotal.Inc()
				default:
					metrics.MockTradesDroppedTotal.Inc()
					g.logger.Debug("trade channel full, dropping mock trade",
						logger.String("symbol", trade.Symbol))
				}
			}
		}
	}
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *Generator) generateTrade(symbols []string) marketdata.Trade {
	g.mu.Lock()
	defer g.mu.Unlock()

	symbol := symbols[g.rng.IntN(len(symbols))]
	current := g.prices[symbol]

	// random walk pulled back towards the starting price
	change := (g.rng.Float64()*2 - 1) * g.config.PriceVolatility * current
	change += (g.base[symbol] - current) * 0.05
	price := math.Round(math.Max(0.01, current+change)*100) / 100
	g.prices[symbol] = price

	size := 100
	if g.config.SizeVariability > 0 {
		// more small trades than large ones
		multiplier := math.Pow(g.rng.Float64(), 2)*9 + 1
		size = int(math.Max(1, 100*multiplier*g.config.SizeVariability))
	}

	trade := marketdata.Trade{
		ID:        g.nextID,
		Symbol:    symbol,
		Price:     price,
		Size:      uint32(size),
		Timestamp: time.Now().UTC(),
	}
	g.nextID++
	return trade
}

// Close stops generation and waits for the generating goroutine to exit.
func (g *Generator) Close() error {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
