package userprofile

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeRegistered = "user.registered"

// RegisteredEvent is emitted after a profile has been stored. It never
// carries the password.
type RegisteredEvent struct {
	EventType  string    `json:"event_type"`
	ProfileID  uuid.UUID `json:"profile_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewRegisteredEvent(p *UserProfile) RegisteredEvent {
	return RegisteredEvent{
		EventType:  EventTypeRegistered,
		ProfileID:  p.ID,
		Email:      p.Email,
		OccurredAt: p.CreatedAt,
	}
}
