package ports

import (
	"context"

	"github.com/accountkit/account-service/internal/core/domain"
)

// EventEmitter accepts lifecycle events for asynchronous delivery.
type EventEmitter interface {
	Enqueue(event domain.UserEvent)
}

// EventPublisher delivers a single lifecycle event to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.UserEvent) error
}
