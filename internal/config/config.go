package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
)

const (
	FEED_TICKS_DEFAULT       = 10
	FEED_INTERVAL_MS_DEFAULT = 1000
	FEED_INTERVAL_MS_MIN     = 10
	FEED_MAX_PRICE_DEFAULT   = 200

	LIVE_ORDER_BUFFER_DEFAULT = 64
	EVENTS_CHAN_BUFF_DEFAULT  = 500

	AGG_INTERVAL_MS_DEFAULT = 100
	AGG_INTERVAL_MS_MIN     = 10
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// AmountPolicy decides which orders contribute to a bulk summary's total amount.
type AmountPolicy string

const (
	AmountAllOrders    AmountPolicy = "all"
	AmountAcceptedOnly AmountPolicy = "accepted"
)

type Config struct {
	GRPCAddr  string
	HTTPAddr  string
	PprofAddr string

	PriceStore string

	RedisCacheAddr string
	RedisCacheUser string
	RedisCachePw   string
	RedisCacheDB   int

	PostgresDSN string

	FeedTicks    int
	FeedInterval time.Duration
	FeedMaxPrice float64

	LiveOrderBuffer  int
	BulkAmountPolicy AmountPolicy

	KafkaBrokers          []string
	KafkaTopicTradeEvents string
	EventsChanBuff        int

	// price ingestor
	Symbols            []string
	AggregatorInterval time.Duration
	MockMarketData     bool
	RawTradesChanBuff  int
	ProcTradesChanBuff int
}

func LoadConfig(getenv func(string) string, log *logger.Logger) (*Config, error) {
	log.Info("loading configuration from environment")

	feedTicks := intOrDefault(getenv, "FEED_TICKS", FEED_TICKS_DEFAULT, log)
	if feedTicks <= 0 {
		log.Warn("feed ticks must be positive, using default",
			logger.Int("provided", feedTicks),
			logger.Int("default", FEED_TICKS_DEFAULT))
		feedTicks = FEED_TICKS_DEFAULT
	}

	feedIntervalMs := intOrDefault(getenv, "FEED_INTERVAL_MS", FEED_INTERVAL_MS_DEFAULT, log)
	if feedIntervalMs < FEED_INTERVAL_MS_MIN {
		log.Warn("feed interval too low, using minimum value",
			logger.Int("provided_ms", feedIntervalMs),
			logger.Int("min_ms", FEED_INTERVAL_MS_MIN))
		feedIntervalMs = FEED_INTERVAL_MS_MIN
	}

	feedMaxPrice := float64(FEED_MAX_PRICE_DEFAULT)
	if s := getenv("FEED_MAX_PRICE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			log.Warn("invalid feed max price, using default",
				logger.String("value", s),
				logger.Int("default", FEED_MAX_PRICE_DEFAULT))
		} else {
			feedMaxPrice = v
		}
	}

	liveOrderBuffer := intOrDefault(getenv, "LIVE_ORDER_BUFFER", LIVE_ORDER_BUFFER_DEFAULT, log)
	if liveOrderBuffer < 1 {
		log.Warn("live order buffer must hold at least one order, using 1",
			logger.Int("provided", liveOrderBuffer))
		liveOrderBuffer = 1
	}

	amountPolicy := AmountPolicy(strings.ToLower(getenv("BULK_AMOUNT_POLICY")))
	switch amountPolicy {
	case AmountAllOrders, AmountAcceptedOnly:
	case "":
		amountPolicy = AmountAllOrders
	default:
		log.Error("unknown bulk amount policy", logger.String("value", string(amountPolicy)))
		return nil, fmt.Errorf("BULK_AMOUNT_POLICY must be %q or %q, got %q",
			AmountAllOrders, AmountAcceptedOnly, amountPolicy)
	}

	// Price store backend
	priceStore := strings.ToLower(getenv("PRICE_STORE"))
	if priceStore == "" {
		priceStore = StoreRedis
	}
	if priceStore != StoreRedis && priceStore != StorePostgres {
		log.Error("unknown price store", logger.String("value", priceStore))
		return nil, fmt.Errorf("PRICE_STORE must be %q or %q, got %q", StoreRedis, StorePostgres, priceStore)
	}

	redisCacheDB := 0
	if s := getenv("REDIS_CACHE_DB"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			log.Error("invalid Redis cache DB value, must be a number",
				logger.String("value", s),
				logger.Error(err))
			return nil, fmt.Errorf("REDIS_CACHE_DB can't be parsed to a number: %w", err)
		}
		redisCacheDB = v
	}

	postgresDSN := getenv("POSTGRES_DSN")
	if priceStore == StorePostgres && postgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required when PRICE_STORE=%s", StorePostgres)
	}

	kafkaBrokers := splitList(getenv("KAFKA_BROKERS"))
	if len(kafkaBrokers) == 0 {
		log.Warn("no Kafka brokers specified, trade events will not be published")
	}

	kafkaTopic := getenv("KAFKA_TOPIC_TRADE_EVENTS")
	if kafkaTopic == "" {
		kafkaTopic = "trade-events"
	}

	aggregatorIntervalMs := intOrDefault(getenv, "AGGREGATOR_INTERVAL_MS", AGG_INTERVAL_MS_DEFAULT, log)
	if aggregatorIntervalMs < AGG_INTERVAL_MS_MIN {
		log.Warn("aggregator interval too low, using minimum value",
			logger.Int("provided_ms", aggregatorIntervalMs),
			logger.Int("min_ms", AGG_INTERVAL_MS_MIN))
		aggregatorIntervalMs = AGG_INTERVAL_MS_MIN
	}

	cfg := &Config{
		GRPCAddr:  stringOrDefault(getenv("GRPC_ADDR"), ":9090"),
		HTTPAddr:  stringOrDefault(getenv("HTTP_ADDR"), ":8080"),
		PprofAddr: getenv("PPROF_ADDR"),

		PriceStore: priceStore,

		RedisCacheAddr: stringOrDefault(getenv("REDIS_CACHE_ADDR"), "localhost:6379"),
		RedisCacheUser: getenv("REDIS_CACHE_UN"),
		RedisCachePw:   getenv("REDIS_CACHE_PW"),
		RedisCacheDB:   redisCacheDB,

		PostgresDSN: postgresDSN,

		FeedTicks:    feedTicks,
		FeedInterval: time.Duration(feedIntervalMs) * time.Millisecond,
		FeedMaxPrice: feedMaxPrice,

		LiveOrderBuffer:  liveOrderBuffer,
		BulkAmountPolicy: amountPolicy,

		KafkaBrokers:          kafkaBrokers,
		KafkaTopicTradeEvents: kafkaTopic,
		EventsChanBuff:        intOrDefault(getenv, "EVENTS_CHAN_BUFF", EVENTS_CHAN_BUFF_DEFAULT, log),

		Symbols:            parseSymbols(getenv("SYMBOLS"), log),
		AggregatorInterval: time.Duration(aggregatorIntervalMs) * time.Millisecond,
		MockMarketData:     strings.EqualFold(getenv("MOCK_MARKET_DATA"), "true"),
		RawTradesChanBuff:  100,
		ProcTradesChanBuff: 50,
	}

	// Log the configuration (hiding sensitive values)
	log.Info("configuration loaded successfully",
		logger.String("grpc_addr", cfg.GRPCAddr),
		logger.String("http_addr", cfg.HTTPAddr),
		logger.String("price_store", cfg.PriceStore),
		logger.String("redis_cache_addr", cfg.RedisCacheAddr),
		logger.Int("redis_cache_db", cfg.RedisCacheDB),
		logger.Int("feed_ticks", cfg.FeedTicks),
		logger.Duration("feed_interval", cfg.FeedInterval),
		logger.Float64("feed_max_price", cfg.FeedMaxPrice),
		logger.Int("live_order_buffer", cfg.LiveOrderBuffer),
		logger.String("bulk_amount_policy", string(cfg.BulkAmountPolicy)),
		logger.Any("kafka_brokers", cfg.KafkaBrokers),
		logger.String("kafka_topic", cfg.KafkaTopicTradeEvents),
		logger.Any("symbols", cfg.Symbols),
		logger.Duration("aggregator_interval", cfg.AggregatorInterval),
		logger.Bool("mock_market_data", cfg.MockMarketData))

	return cfg, nil
}

func intOrDefault(getenv func(string) string, key string, def int, log *logger.Logger) int {
	s := getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Warn("invalid integer value, using default",
			logger.String("key", key),
			logger.String("value", s),
			logger.Int("default", def),
			logger.Error(err))
		return def
	}
	return v
}

func stringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSymbols parses the comma-separated list of symbols from the environment
func parseSymbols(symbolsStr string, log *logger.Logger) []string {
	defaultSymbols := []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA"}

	if symbolsStr == "" {
		log.Info("no symbols provided, using default symbols",
			logger.Any("symbols", defaultSymbols))
		return defaultSymbols
	}

	symbols := splitList(symbolsStr)
	if len(symbols) == 0 {
		log.Warn("all provided symbols were empty, using default symbols",
			logger.Any("defaults", defaultSymbols))
		return defaultSymbols
	}

	for i := range symbols {
		symbols[i] = strings.ToUpper(symbols[i])
	}
	return symbols
}
