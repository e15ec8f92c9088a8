package services

import (
	"context"

	"github.com/rs/zerolog"

	"cardspend/internal/amqp"
	"cardspend/internal/log"
)

// EventPublisher is implemented by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev amqp.Event) error
}

// notifier publishes after commit on a best effort basis. A nil publisher
// disables notifications.
type notifier struct {
	publisher EventPublisher
	logger    zerolog.Logger
}

func (n notifier) notify(ctx context.Context, ev amqp.Event) {
	if n.publisher == nil {
		n.logger.Debug().Str(log.FieldEventType, string(ev.Type)).Msg("AMQP publisher not configured, skipping event")
		return
	}
	if err := n.publisher.Publish(ctx, ev); err != nil {
		// The change is committed; a lost notification must not fail the request
		n.logger.Error().Err(err).
			Str(log.FieldEventType, string(ev.Type)).
			Str(log.FieldEventID, ev.ID.String()).
			Msg("Failed to publish event")
	}
}
