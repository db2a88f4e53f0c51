package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
)

type RegisteredEventHandler func(ctx context.Context, evt userprofile.RegisteredEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type UserEventsConsumer struct {
	reader messageReader
	logger logger.Logger
}

func NewUserEventsConsumer(cfg config.Config, groupID string, log logger.Logger) (*UserEventsConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = DefaultTopicUserEvents
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	log.Info("Kafka consumer ready", zap.String("topic", topic), zap.String("group_id", groupID))
	return &UserEventsConsumer{reader: reader, logger: log}, nil
}

const (
	maxHandleAttempts = 3
	retryBackoff      = 500 * time.Millisecond
)

// Run feeds user.registered events to handle until ctx is cancelled.
// Undecodable and unknown messages are committed and skipped. A failing
// handler is retried in place up to maxHandleAttempts times; after that the
// event is logged as dropped and committed, since a later commit in the
// same partition would move past it anyway.
func (c *UserEventsConsumer) Run(ctx context.Context, handle RegisteredEventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		evt, err := decodeRegisteredEvent(msg)
		if err != nil {
			c.logger.Warn("Skipping message", zap.String("key", string(msg.Key)), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if err := c.handleWithRetry(ctx, handle, evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Dropping event after retries", err,
				zap.String("profile_id", evt.ProfileID.String()),
				zap.Int64("offset", msg.Offset),
			)
		}
		c.commit(ctx, msg)
	}
}

func (c *UserEventsConsumer) handleWithRetry(ctx context.Context, handle RegisteredEventHandler, evt userprofile.RegisteredEvent) error {
	var err error
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		if err = handle(ctx, evt); err == nil {
			return nil
		}
		c.logger.Warn("Event handler failed",
			zap.String("profile_id", evt.ProfileID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == maxHandleAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func (c *UserEventsConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *UserEventsConsumer) Close() error {
	return c.reader.Close()
}

func decodeRegisteredEvent(msg kafka.Message) (userprofile.RegisteredEvent, error) {
	var evt userprofile.RegisteredEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return evt, fmt.Errorf("unmarshal event: %w", err)
	}
	if evt.EventType != userprofile.EventTypeRegistered {
		return evt, fmt.Errorf("unexpected event type %q", evt.EventType)
	}
	return evt, nil
}
