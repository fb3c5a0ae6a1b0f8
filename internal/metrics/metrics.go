package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeFailed    = "failed"
)

var (
	// System metrics
	GoroutinesCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_goroutines_count",
		Help: "The current number of goroutines",
	})

	MemoryAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_memory_alloc_bytes",
		Help: "Current memory allocation in bytes",
	})

	HeapObjectsCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_heap_objects_count",
		Help: "Current number of allocated heap objects",
	})

	GCPauseNanosTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_gc_pause_nanos_total",
		Help: "Total time spent in GC pause in nanoseconds",
	})

	// Session metrics
	SessionsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_sessions_started_total",
		Help: "Total number of rpc sessions opened",
	}, []string{"rpc"})

	SessionsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_sessions_finished_total",
		Help: "Total number of rpc sessions finished, by outcome",
	}, []string{"rpc", "outcome"})

	SessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "app_sessions_active",
		Help: "Number of rpc sessions currently open",
	}, []string{"rpc"})

	SessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "app_session_duration_seconds",
		Help:    "Lifetime of rpc sessions",
		Buckets: []float64{.005, .05, .5, 1, 5, 10, 30, 60, 300},
	}, []string{"rpc"})

	OrdersReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_orders_received_total",
		Help: "Total number of orders read from client streams",
	}, []string{"rpc"})

	TradeStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_trade_status_total",
		Help: "Total number of order verdicts, by status",
	}, []string{"status"})

	QuotesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_quotes_sent_total",
		Help: "Total number of price quotes pushed to subscribers",
	})

	PriceLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_price_lookups_total",
		Help: "Total number of unary price lookups, by result",
	}, []string{"result"})

	PriceStoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "app_price_store_duration_seconds",
		Help:    "Duration of price store reads",
		Buckets: prometheus.DefBuckets,
	})

	// Trade event metrics
	TradeEventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_trade_events_dropped_total",
		Help: "Total number of trade events dropped because the event channel was full",
	})

	TradeEventsChanSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_trade_events_channel_size",
		Help: "Current size of the trade events channel",
	})

	TradeEventsChanCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_trade_events_channel_capacity",
		Help: "Capacity of the trade events channel",
	})

	// Kafka metrics
	KafkaPublishTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_kafka_publish_total",
		Help: "Total number of Kafka publish operations",
	})

	KafkaPublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_kafka_publish_errors_total",
		Help: "Total number of Kafka publish errors",
	})

	KafkaOperationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "app_kafka_operation_duration_seconds",
		Help:    "Duration of Kafka operations",
		Buckets: prometheus.DefBuckets,
	})

	// Price ingest metrics
	TradesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_trades_received_total",
		Help: "Total number of trades received from the market data source",
	})

	TradesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_trades_dropped_total",
		Help: "Total number of trades dropped because a pipeline channel was full",
	})

	TradesAggregatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_trades_aggregated_total",
		Help: "Total number of trades sent after aggregation",
	})

	QuotesStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_quotes_stored_total",
		Help: "Total number of latest-price writes to the price store",
	})

	QuoteStoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_quote_store_errors_total",
		Help: "Total number of failed latest-price writes",
	})

	MockTradesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_mock_trades_generated_total",
		Help: "Total number of mock trades generated",
	})

	MockTradesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_mock_trades_dropped_total",
		Help: "Total number of mock trades dropped due to backpressure",
	})
)
