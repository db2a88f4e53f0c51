package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishUserRegistered(t *testing.T) {
	w := &fakeWriter{}
	client := &KafkaProducerClient{UserEventsWriter: w, logger: logger.NewNopLogger()}
	evt := userprofile.RegisteredEvent{
		EventType:  userprofile.EventTypeRegistered,
		ProfileID:  uuid.New(),
		Email:      "a@example.com",
		OccurredAt: time.Now().UTC(),
	}

	require.NoError(t, client.PublishUserRegistered(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, evt.ProfileID.String(), string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, userprofile.EventTypeRegistered, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "a@example.com", decoded["email"])
	assert.NotContains(t, decoded, "password")

	client.Close()
	assert.True(t, w.closed)
}

func TestPublishUserRegistered_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	client := &KafkaProducerClient{UserEventsWriter: w, logger: logger.NewNopLogger()}

	err := client.PublishUserRegistered(context.Background(), userprofile.RegisteredEvent{EventType: userprofile.EventTypeRegistered})

	assert.ErrorContains(t, err, "broker unavailable")
}

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}
