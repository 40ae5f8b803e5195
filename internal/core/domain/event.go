package domain

import "time"

// UserEventType names a step in an account's lifecycle.
type UserEventType string

const (
	EventUserRegistered UserEventType = "user.registered"
	EventUserUpdated    UserEventType = "user.updated"
	EventUserDeleted    UserEventType = "user.deleted"
)

// UserEvent is published after a lifecycle change has been persisted.
type UserEvent struct {
	Type      UserEventType `json:"type"`
	UserID    string        `json:"user_id"`
	ActorID   string        `json:"actor_id"`
	Fields    []string      `json:"fields,omitempty"` // changed fields for user.updated
	Timestamp time.Time     `json:"timestamp"`
}
