package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	failures int
	calls    int
}

func (h *flakyHandler) Topic() string { return "prices" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

type panicHandler struct{}

func (panicHandler) Topic() string                        { return "prices" }
func (panicHandler) Handle(context.Context, []byte) error { panic("boom") }

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}

func TestHandleWithRetryRecoversAfterTransientErrors(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	h := &flakyHandler{failures: 2}
	require.NoError(t, c.handleWithRetry(context.Background(), h, msgFor("prices")))
	assert.Equal(t, 3, h.calls)
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(1, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	h := &flakyHandler{failures: 10}
	require.Error(t, c.handleWithRetry(context.Background(), h, msgFor("prices")))
	assert.Equal(t, 2, h.calls)
}

func TestSafeHandleConvertsPanic(t *testing.T) {
	err := safeHandle(context.Background(), panicHandler{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	require.Error(t, err)
}

func msgFor(topic string) kafkago.Message {
	return kafkago.Message{Topic: topic, Value: []byte(`{}`)}
}
