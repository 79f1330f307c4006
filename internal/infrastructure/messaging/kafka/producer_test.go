package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// mockKafkaWriter
type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 1024 * 1024,
	}
}

func newTestProducerMessage(topic, key, value string) *ProducerMessage {
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func newTestProducer(mockWriter WriterInterface) *Producer {
	return &Producer{
		writer:  mockWriter,
		config:  newTestProducerConfig(),
		logger:  logging.NewNopLogger(),
		metrics: &ProducerMetrics{},
	}
}

func TestValidateProducerConfig_Valid(t *testing.T) {
	err := ValidateProducerConfig(newTestProducerConfig())
	assert.NoError(t, err)
}

func TestValidateProducerConfig_EmptyBrokers(t *testing.T) {
	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestValidateProducerConfig_BadAcks(t *testing.T) {
	cfg := newTestProducerConfig()
	cfg.RequiredAcks = "two"
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	msg := newTestProducerMessage(TopicClassificationEvents, "case-1", `{"code":"090121"}`)
	msg.Headers = map[string]string{"event_type": EventTypeClassification}

	err := producer.Publish(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, TopicClassificationEvents, captured[0].Topic)
	assert.Equal(t, []byte("case-1"), captured[0].Key)
	require.Len(t, captured[0].Headers, 1)
	assert.Equal(t, "event_type", captured[0].Headers[0].Key)
	assert.EqualValues(t, int64(1), producer.Metrics().MessagesPublished.Load())
}

func TestPublish_EmptyTopic(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	err := producer.Publish(context.Background(), newTestProducerMessage("", "k", "v"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_OversizedMessage(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	producer.config.MaxMessageBytes = 8
	err := producer.Publish(context.Background(), newTestProducerMessage("t", "k", "value that is far too long"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_WriteFailure(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("broker unavailable")
		},
	})
	err := producer.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
	assert.EqualValues(t, int64(1), producer.Metrics().MessagesFailed.Load())
}

func TestPublish_AfterClose(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	require.NoError(t, producer.Close())
	err := producer.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.Error(t, err)
}

func TestPublishBatch_AllSucceed(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	msgs := []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	}
	result, err := producer.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
}

func TestPublishBatch_InvalidMessageReported(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	msgs := []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("", "b", "2"),
	}
	result, err := producer.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
}

func TestPublishBatch_PartialWriteErrors(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return kafka.WriteErrors{nil, errors.New("leader not available")}
		},
	})
	msgs := []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	}
	result, err := producer.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Reason, "leader not available")
}

func TestPublishBatch_Empty(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			t.Fatal("write should not be called")
			return nil
		},
	})
	result, err := producer.PublishBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
}

func TestClose_Idempotent(t *testing.T) {
	closeCalls := 0
	producer := newTestProducer(&mockKafkaWriter{
		closeFunc: func() error {
			closeCalls++
			return nil
		},
	})
	require.NoError(t, producer.Close())
	require.NoError(t, producer.Close())
	assert.Equal(t, 1, closeCalls)
}

func TestEventPublisher_NotifyWrapsEventInEnvelope(t *testing.T) {
	var captured []kafka.Message
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})
	publisher := NewEventPublisher(producer, "")

	ev := ctypes.ClassificationEvent{
		CaseID:         "case-42",
		Code:           "090121",
		Confidence:     0.93,
		Method:         ctypes.MethodRulePipeline,
		DurationMillis: 120,
	}
	err := publisher.Notify(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, TopicClassificationEvents, captured[0].Topic)
	assert.Equal(t, []byte("case-42"), captured[0].Key)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(captured[0].Value, &env))
	assert.Equal(t, EventTypeClassification, env.EventType)
	assert.NotEmpty(t, env.EventID)

	var decoded ctypes.ClassificationEvent
	require.NoError(t, env.DecodePayload(&decoded))
	assert.Equal(t, ev.CaseID, decoded.CaseID)
	assert.Equal(t, ev.Code, decoded.Code)
	assert.InDelta(t, 0.93, decoded.Confidence, 1e-9)
}

func TestProducerConfigFromApp(t *testing.T) {
	appCfg := newTestAppKafkaConfig()
	appCfg.TimeoutMS = 5000
	appCfg.ProducerRetries = 5

	cfg := ProducerConfigFromApp(appCfg)
	assert.Equal(t, appCfg.Brokers, cfg.Brokers)
	assert.Equal(t, "all", cfg.RequiredAcks)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
}

//Personal.AI order the ending
