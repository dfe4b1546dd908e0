package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/domain"
	"github.com/shareit/service-shareit/internal/platform/kafka"
)

// UserReplica is the write side of the directory fed by user events.
type UserReplica interface {
	SaveUser(ctx context.Context, user *directory.User) error
}

// UserEventConsumer keeps the local user directory in sync with the user service.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	users    UserReplica
	logger   *zap.Logger
}

// NewUserEventConsumer creates a new UserEventConsumer.
func NewUserEventConsumer(
	brokers []string,
	groupID string,
	users UserReplica,
	logger *zap.Logger,
) *UserEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, directory.TopicUserEvents, logger)
	return &UserEventConsumer{
		consumer: consumer,
		users:    users,
		logger:   logger,
	}
}

// Start begins consuming user events. This blocks until the context is cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case directory.EventUserUpserted:
		return c.handleUserUpserted(ctx, cloudEvent)
	default:
		// user.deleted included: bookings keep referencing the user.
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *UserEventConsumer) handleUserUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt directory.UserUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse UserUpsertedEvent data",
			zap.Error(err),
		)
		return nil
	}

	user, err := directory.NewUser(evt.UserID, evt.Name, evt.Email)
	if err != nil {
		c.logger.Warn("skipping invalid user event",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return nil
	}

	if err := c.users.SaveUser(ctx, user); err != nil {
		if domain.IsConflict(err) {
			c.logger.Warn("skipping user event with an email taken by another user",
				zap.String("user_id", evt.UserID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to replicate user",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("user replicated", zap.String("user_id", evt.UserID.String()))
	return nil
}
