package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/config"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
)

// EventProducer writes trade events to a topic keyed by session id, so the
// events of one session stay ordered on a single partition.
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Retry.Max = 3
	return config
}

func NewEventProducer(cfg *config.Config) (*EventProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewEventProducerFrom(producer, cfg.KafkaTopicTradeEvents), nil
}

func NewEventProducerFrom(producer sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *EventProducer) Produce(ctx context.Context, event trading.Event) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		return 0, 0, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.Key()),
		Value:     sarama.ByteEncoder(bytes),
		Timestamp: event.Timestamp,
	}
	return p.producer.SendMessage(message)
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}
