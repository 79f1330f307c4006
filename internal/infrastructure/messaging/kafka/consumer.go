package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

const (
	defaultMaxProcessRetries = 3
	initialRetryBackoff      = 1 * time.Second
	maxRetryBackoff          = 30 * time.Second
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// ConsumerConfig holds consumer settings.
type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	StartOffset       string // "earliest" | "latest"
	MaxProcessRetries int
	DeadLetterTopic   string
	CommitInterval    time.Duration
}

// ConsumerConfigFromApp derives consumer settings from the application
// configuration. The worker listens on the control and reindex topics.
func ConsumerConfigFromApp(cfg config.KafkaConfig) ConsumerConfig {
	control := cfg.ControlTopic
	if control == "" {
		control = TopicEvaluationControl
	}
	return ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topics:          []string{control, TopicCatalogReindex},
		StartOffset:     cfg.AutoOffsetReset,
		DeadLetterTopic: TopicDeadLetterDefault,
	}
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	return nil
}

// ConsumerMetrics counts consumption outcomes.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesDeadLettered atomic.Int64
}

// Consumer reads messages from the subscribed topics and dispatches them
// to per-topic handlers. Failed messages are retried with exponential
// backoff and dead-lettered when retries are exhausted, so one poison
// message never stalls the group.
type Consumer struct {
	readers    []ReaderInterface
	config     ConsumerConfig
	handlers   map[string]MessageHandler
	deadLetter *Producer
	logger     logging.Logger
	metrics    *ConsumerMetrics

	mu      sync.RWMutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started atomic.Bool
	closed  atomic.Bool
}

// NewConsumer builds a consumer with one reader per subscribed topic.
// deadLetter may be nil, in which case exhausted messages are dropped
// with a logged error.
func NewConsumer(cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxProcessRetries <= 0 {
		cfg.MaxProcessRetries = defaultMaxProcessRetries
	}

	readers := make([]ReaderInterface, 0, len(cfg.Topics))
	for _, topic := range cfg.Topics {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			GroupID:        cfg.GroupID,
			Topic:          topic,
			StartOffset:    startOffset(cfg.StartOffset),
			CommitInterval: cfg.CommitInterval,
			MinBytes:       1,
			MaxBytes:       10 * 1024 * 1024,
		}))
	}

	return &Consumer{
		readers:    readers,
		config:     cfg,
		handlers:   make(map[string]MessageHandler),
		deadLetter: deadLetter,
		logger:     logger,
		metrics:    &ConsumerMetrics{},
	}, nil
}

func startOffset(mode string) int64 {
	if mode == "latest" {
		return kafka.LastOffset
	}
	return kafka.FirstOffset
}

// RegisterHandler binds a handler to a topic. Must be called before Start.
func (c *Consumer) RegisterHandler(topic string, handler MessageHandler) error {
	if topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if handler == nil {
		return errors.New(errors.ErrCodeValidation, "handler required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.handlers[topic]; dup {
		return errors.Newf(errors.ErrCodeConflict, "handler already registered for %s", topic)
	}
	c.handlers[topic] = handler
	return nil
}

// Start launches one consume loop per reader and returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.InvalidState("consumer already started")
	}
	if c.closed.Load() {
		return errors.InvalidState("consumer is closed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for _, reader := range c.readers {
		c.wg.Add(1)
		go c.consumeLoop(runCtx, reader)
	}
	c.logger.Info("Kafka consumer started",
		logging.Strings("topics", c.config.Topics),
		logging.String("group_id", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, reader ReaderInterface) {
	defer c.wg.Done()
	for {
		kMsg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch message", logging.Err(err))
			continue
		}

		msg := fromKafkaMessage(kMsg)
		if err := c.processMessage(ctx, msg); err != nil {
			// processMessage only fails when the context is done;
			// leave the offset uncommitted for redelivery.
			continue
		}
		if err := reader.CommitMessages(ctx, kMsg); err != nil && ctx.Err() == nil {
			c.logger.Error("Failed to commit offset",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		}
	}
}

// processMessage runs the topic handler with retries. Exhausted messages
// go to the dead-letter topic and the error is swallowed so the
// partition keeps moving.
func (c *Consumer) processMessage(ctx context.Context, msg *Message) error {
	c.mu.RLock()
	handler, ok := c.handlers[msg.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("No handler for topic, skipping", logging.String("topic", msg.Topic))
		return nil
	}

	backoff := initialRetryBackoff
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxProcessRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
		}
		if lastErr = handler(ctx, msg); lastErr == nil {
			c.metrics.MessagesConsumed.Add(1)
			return nil
		}
		c.logger.Warn("Message handler failed",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Int("attempt", attempt+1),
			logging.Err(lastErr))
	}

	c.metrics.MessagesFailed.Add(1)
	c.sendToDeadLetter(ctx, msg, lastErr)
	return nil
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *Message, cause error) {
	if c.deadLetter == nil || c.config.DeadLetterTopic == "" {
		c.logger.Error("Dropping message after exhausted retries",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(cause))
		return
	}

	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	if cause != nil {
		headers["error_message"] = cause.Error()
	}

	dlqMsg := &ProducerMessage{
		Topic:     c.config.DeadLetterTopic,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: time.Now().UTC(),
	}
	if err := c.deadLetter.Publish(ctx, dlqMsg); err != nil {
		c.logger.Error("Failed to dead-letter message",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
	c.logger.Warn("Message dead-lettered",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset))
}

func fromKafkaMessage(kMsg kafka.Message) *Message {
	msg := &Message{
		Topic:     kMsg.Topic,
		Partition: kMsg.Partition,
		Offset:    kMsg.Offset,
		Key:       kMsg.Key,
		Value:     kMsg.Value,
		Timestamp: kMsg.Time,
	}
	if len(kMsg.Headers) > 0 {
		msg.Headers = make(map[string]string, len(kMsg.Headers))
		for _, h := range kMsg.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}
	}
	return msg
}

// Metrics exposes the consumer counters.
func (c *Consumer) Metrics() *ConsumerMetrics {
	return c.metrics
}

// Close stops the consume loops and waits for them to drain.
func (c *Consumer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var firstErr error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//Personal.AI order the ending
