package model

import (
	"github.com/google/uuid"
)

// NotificationEvent is a fire-and-forget message to the notification
// collaborator; it is not authoritative state.
type NotificationEvent struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email,omitempty"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}
