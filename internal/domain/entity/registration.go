package entity

import "time"

const RegistrationConfirmed = "confirmed"

// Registration is unique per (EventID, UserID).
type Registration struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"event_id"`
	UserID       UserID    `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
	Status       string    `json:"status"`
}
