package entity

import "time"

// Notification types emitted by the event service.
const (
	NotificationEventCreated      = "event_created"
	NotificationEventRegistration = "event_registration"
)

type Notification struct {
	ID               int64      `json:"id"`
	UserID           UserID     `json:"user_id"`
	EventID          *int64     `json:"event_id"`
	NotificationType string     `json:"notification_type"`
	Message          string     `json:"message"`
	IsRead           bool       `json:"is_read"`
	ReadAt           *time.Time `json:"read_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewNotification is the payload the event service posts to the
// notification service. RecipientEmail is only used for the email copy.
type NewNotification struct {
	UserID           UserID `json:"user_id" binding:"required"`
	EventID          *int64 `json:"event_id"`
	NotificationType string `json:"notification_type" binding:"required,max=50"`
	Message          string `json:"message" binding:"required"`
	RecipientEmail   string `json:"recipient_email,omitempty" binding:"omitempty,email"`
}

// NotificationFilter narrows a listing. Nil means no filter.
type NotificationFilter struct {
	UserID *UserID
	IsRead *bool
}
