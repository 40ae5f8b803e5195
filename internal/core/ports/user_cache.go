package ports

import (
	"context"

	"github.com/accountkit/account-service/internal/core/domain"
)

// UserCache holds sanitized user views keyed by id. Failures are non-fatal and
// are never surfaced to callers.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, bool)
	// Set stores a view only if no entry exists for the id. It never replaces
	// a live view or a tombstone left by Delete.
	Set(ctx context.Context, user *domain.User)
	// Delete replaces the entry with a tombstone so that a view read from the
	// store before the mutation cannot be cached afterwards.
	Delete(ctx context.Context, id string)
}
