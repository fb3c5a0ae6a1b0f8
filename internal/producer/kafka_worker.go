package producer

import (
	"context"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/metrics"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/interfaces"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// KafkaWorker drains trade events into the event producer one at a time.
// Failed events are logged and skipped; the producer retries internally.
type KafkaWorker struct {
	producer interfaces.EventProducer
	logger   *logger.Logger
}

func NewKafkaWorker(producer interfaces.EventProducer, log *logger.Logger) *KafkaWorker {
	return &KafkaWorker{
		producer: producer,
		logger:   log.Component("kafka_worker"),
	}
}

// Start returns once events is closed and drained, or when ctx is done.
// The producer is closed in both cases.
func (kw *KafkaWorker) Start(ctx context.Context, events <-chan trading.Event) error {
	kw.logger.Info("starting kafka worker")
	defer kw.close()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				kw.logger.Info("event channel closed, stopping kafka worker")
				return nil
			}
			metrics.UpdateChannelMetrics(len(events), cap(events),
				metrics.TradeEventsChanSize, metrics.TradeEventsChanCapacity)
			kw.produce(ctx, event)

		case <-ctx.Done():
			kw.logger.Info("context cancelled, stopping kafka worker",
				logger.Int("pending_events", len(events)))
			return nil
		}
	}
}

func (kw *KafkaWorker) produce(ctx context.Context, event trading.Event) {
	timer := metrics.NewTimer(metrics.KafkaOperationDuration)
	partition, offset, err := kw.producer.Produce(ctx, event)
	duration := timer.ObserveDuration()

	if err != nil {
		metrics.KafkaPublishErrorsTotal.Inc()
		kw.logger.Error("failed to produce trade event",
			logger.Error(err),
			logger.String("type", string(event.Type)),
			logger.String("session_id", event.SessionID))
		return
	}

	metrics.KafkaPublishTotal.Inc()
	kw.logger.Debug("produced trade event",
		logger.String("type", string(event.Type)),
		logger.String("session_id", event.SessionID),
		logger.Int("partition", int(partition)),
		logger.Int64("offset", offset),
		logger.Duration("duration", duration))
}

func (kw *KafkaWorker) close() {
	if err := kw.producer.Close(); err != nil {
		kw.logger.Error("error closing event producer", logger.Error(err))
	}
	kw.logger.Info("kafka worker finished")
}
