package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
)

const DefaultTopicUserEvents = "user.events"

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	UserEventsWriter messageWriter
	logger           logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = DefaultTopicUserEvents
	}

	userWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("Initialize Kafka Producer successfully.", zap.Strings("brokers", brokers), zap.String("topic", topic))

	return &KafkaProducerClient{
		UserEventsWriter: userWriter,
		logger:           log,
	}, nil
}

// PublishUserRegistered keys the message by profile ID so events for one
// profile stay on one partition.
func (c *KafkaProducerClient) PublishUserRegistered(ctx context.Context, evt userprofile.RegisteredEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.EventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.ProfileID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
		Time: evt.OccurredAt,
	}
	if err := c.UserEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", evt.EventType, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.UserEventsWriter != nil {
		if err := c.UserEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producer")
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(context.Context, userprofile.RegisteredEvent) error {
	return nil
}
