package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/config"
)

// DefaultTopic receives every transaction lifecycle event
const DefaultTopic = "payment.transactions"

// KafkaPublisher ships transaction events through a synchronous producer.
// Messages are keyed by merchant so one merchant's events stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   coreport.Logger
}

var _ gateway.EventPublisher = (*KafkaPublisher)(nil)

// NewSaramaConfig builds the producer settings for the event topic
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Retry.Max = 5
	sc.Net.MaxOpenRequests = 1
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = cfg.Timeout
		sc.Net.DialTimeout = cfg.Timeout
	}
	return sc
}

// NewKafkaPublisher connects a producer to the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, logger coreport.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger coreport.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.Named("kafka"),
	}
}

// Publish sends one event and waits for the broker acknowledgement
func (p *KafkaPublisher) Publish(ctx context.Context, event entity.TransactionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.MerchantID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: send %s: %w", event.Type, err)
	}

	p.logger.Debug("Published transaction event", map[string]any{
		"type":           string(event.Type),
		"transaction_id": event.TransactionID,
		"partition":      partition,
		"offset":         offset,
	})
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops every event; used when Kafka is disabled
type NoopPublisher struct{}

var _ gateway.EventPublisher = NoopPublisher{}

// Publish implements gateway.EventPublisher
func (NoopPublisher) Publish(context.Context, entity.TransactionEvent) error { return nil }

// Close implements gateway.EventPublisher
func (NoopPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when enabled, otherwise a NoopPublisher
func NewPublisher(cfg config.KafkaConfig, logger coreport.Logger) (gateway.EventPublisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg, logger)
}
