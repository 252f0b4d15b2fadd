package services

import (
	"context"

	"github.com/rs/zerolog"
)

// Routing keys of published domain events.
const (
	EventUserCreated     = "user.created"
	EventUserDeleted     = "user.deleted"
	EventFavoriteUpdated = "user.favorite.updated"
	EventTeamUpdated     = "user.team.updated"
)

// EventPublisher delivers domain events. Implemented by rabbitmq.Client.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// publishEvent is best effort: a failed publish never fails the operation.
func publishEvent(ctx context.Context, pub EventPublisher, log zerolog.Logger, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.Warn().Err(err).Str("event", routingKey).Msg("failed to publish event")
	}
}
