package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/HSCode-Intelligence/internal/config"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

const (
	defaultBatchTimeout    = 100 * time.Millisecond
	defaultWriteTimeout    = 10 * time.Second
	defaultMaxMessageBytes = 1024 * 1024
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// ProducerConfig holds producer settings.
type ProducerConfig struct {
	Brokers         []string
	RequiredAcks    string // "none" | "one" | "all"
	Compression     string // "" | "gzip" | "snappy" | "lz4" | "zstd"
	BatchSize       int
	BatchTimeout    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
	MaxRetries      int
}

// ProducerConfigFromApp derives producer settings from the application
// configuration.
func ProducerConfigFromApp(cfg config.KafkaConfig) ProducerConfig {
	pc := ProducerConfig{
		Brokers:      cfg.Brokers,
		RequiredAcks: "all",
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.ProducerRetries,
	}
	if cfg.TimeoutMS > 0 {
		pc.WriteTimeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return pc
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	switch cfg.RequiredAcks {
	case "", "none", "one", "all":
	default:
		return errors.Newf(errors.ErrCodeValidation, "invalid required_acks %q", cfg.RequiredAcks)
	}
	return nil
}

// ProducerMetrics counts publication outcomes.
type ProducerMetrics struct {
	MessagesPublished atomic.Int64
	MessagesFailed    atomic.Int64
	BytesPublished    atomic.Int64
}

// Producer publishes messages to Kafka.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	metrics *ProducerMetrics
	closed  atomic.Bool
}

func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BatchBytes:   int64(cfg.MaxMessageBytes),
		MaxAttempts:  maxAttempts(cfg.MaxRetries),
		Compression:  compressionCodec(cfg.Compression),
	}

	return &Producer{
		writer:  writer,
		config:  cfg,
		logger:  logger,
		metrics: &ProducerMetrics{},
	}, nil
}

func requiredAcks(mode string) kafka.RequiredAcks {
	switch mode {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func maxAttempts(retries int) int {
	if retries <= 0 {
		return 3
	}
	return retries + 1
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}

// Publish sends a single message and waits for the configured acks.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return errors.InvalidState("producer is closed")
	}
	if err := validateMessage(msg, p.config.MaxMessageBytes); err != nil {
		return err
	}

	kMsg := toKafkaMessage(msg)
	if err := p.writer.WriteMessages(ctx, kMsg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrapf(err, errors.ErrCodeServiceUnavailable, "failed to publish to %s", msg.Topic)
	}
	p.metrics.MessagesPublished.Add(1)
	p.metrics.BytesPublished.Add(int64(len(msg.Value)))
	return nil
}

// BatchPublishResult reports the outcome of a batch publication.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// BatchItemError identifies one failed message in a batch.
type BatchItemError struct {
	Index  int
	Topic  string
	Reason string
}

// PublishBatch sends messages in one write. Partial failures are reported
// per message in the result.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*ProducerMessage) (*BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, errors.InvalidState("producer is closed")
	}
	if len(msgs) == 0 {
		return &BatchPublishResult{}, nil
	}

	kMsgs := make([]kafka.Message, 0, len(msgs))
	result := &BatchPublishResult{}
	indexes := make([]int, 0, len(msgs))
	for i, msg := range msgs {
		if err := validateMessage(msg, p.config.MaxMessageBytes); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{Index: i, Topic: msg.Topic, Reason: err.Error()})
			continue
		}
		kMsgs = append(kMsgs, toKafkaMessage(msg))
		indexes = append(indexes, i)
	}
	if len(kMsgs) == 0 {
		p.metrics.MessagesFailed.Add(int64(result.Failed))
		return result, nil
	}

	err := p.writer.WriteMessages(ctx, kMsgs...)
	switch werr := err.(type) {
	case nil:
		result.Succeeded = len(kMsgs)
	case kafka.WriteErrors:
		for j, itemErr := range werr {
			if itemErr == nil {
				result.Succeeded++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{
				Index:  indexes[j],
				Topic:  msgs[indexes[j]].Topic,
				Reason: itemErr.Error(),
			})
		}
	default:
		result.Failed += len(kMsgs)
		p.metrics.MessagesFailed.Add(int64(result.Failed))
		return result, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "batch publish failed")
	}

	p.metrics.MessagesPublished.Add(int64(result.Succeeded))
	p.metrics.MessagesFailed.Add(int64(result.Failed))
	return result, nil
}

func validateMessage(msg *ProducerMessage, maxBytes int) error {
	if msg == nil {
		return errors.New(errors.ErrCodeValidation, "message is nil")
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "message topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "message value required")
	}
	if maxBytes > 0 && len(msg.Value) > maxBytes {
		return errors.Newf(errors.ErrCodeValidation, "message exceeds %d bytes", maxBytes)
	}
	return nil
}

func toKafkaMessage(msg *ProducerMessage) kafka.Message {
	kMsg := kafka.Message{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		kMsg.Headers = append(kMsg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return kMsg
}

// Metrics exposes the producer counters.
func (p *Producer) Metrics() *ProducerMetrics {
	return p.metrics
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// EventPublisher publishes classification outcomes to the events topic,
// keyed by case so outcomes for one case stay ordered.
type EventPublisher struct {
	producer *Producer
	topic    string
	source   string
}

var _ enginecommon.FeedbackSink = (*EventPublisher)(nil)

func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	if topic == "" {
		topic = TopicClassificationEvents
	}
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		source:   "hscode-engine",
	}
}

func (ep *EventPublisher) Notify(ctx context.Context, ev ctypes.ClassificationEvent) error {
	env, err := NewEventEnvelope(EventTypeClassification, ep.source, ev)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(ep.topic)
	if err != nil {
		return err
	}
	msg.Key = []byte(ev.CaseID)
	return ep.producer.Publish(ctx, msg)
}

//Personal.AI order the ending
