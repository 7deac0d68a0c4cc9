package templates

import (
	"strings"
	"time"
)

// Notification types that have their own subject line.
const (
	EventCreated      = "event_created"
	EventRegistration = "event_registration"
	EventUpdated      = "event_updated"
	EventCancelled    = "event_cancelled"
	Test              = "test"
)

const defaultSubject = "Notification from Event Management Platform"

// Subject maps a notification type to its email subject.
func Subject(notificationType string) string {
	switch strings.ToLower(notificationType) {
	case EventCreated:
		return "Your event has been created"
	case EventRegistration:
		return "Event registration"
	case EventUpdated:
		return "Event updated"
	case EventCancelled:
		return "Event cancelled"
	case Test:
		return "Test notification"
	default:
		return defaultSubject
	}
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithEvent(eventID int64) Option { return func(d *EmailData) { d.EventID = eventID } }
func WithUser(userID int64) Option   { return func(d *EmailData) { d.UserID = userID } }

// NewNotificationData fills the common fields and applies opts.
func NewNotificationData(appName, typ, message, recipient string, opts ...Option) EmailData {
	d := EmailData{
		AppName:        appName,
		Type:           typ,
		Message:        message,
		RecipientEmail: recipient,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
