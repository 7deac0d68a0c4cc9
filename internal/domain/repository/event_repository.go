package repository

import (
	"context"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
)

type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	// List returns published events only, newest start_date first.
	List(ctx context.Context, f entity.EventFilter, skip, limit int) ([]entity.Event, error)
	// ListPublishedByIDs keeps the order of ids and drops unknown or unpublished ones.
	ListPublishedByIDs(ctx context.Context, ids []int64) ([]entity.Event, error)
	Update(ctx context.Context, e *entity.Event) error
	// Delete removes the event together with its registrations.
	Delete(ctx context.Context, id int64) error
	ListByOrganizer(ctx context.Context, organizer entity.UserID) ([]entity.Event, error)
	ListRegisteredBy(ctx context.Context, user entity.UserID) ([]entity.Event, error)
}

// RegistrationRepository owns the seat counter together with the
// registration rows; both change in the same transaction.
type RegistrationRepository interface {
	// Register returns ErrNotFound, ErrDuplicate or ErrCapacityReached,
	// checked in that order. On success the returned event carries the
	// incremented counter.
	Register(ctx context.Context, eventID int64, user entity.UserID) (*entity.Registration, *entity.Event, error)
	// Unregister returns ErrNotFound when no registration exists.
	Unregister(ctx context.Context, eventID int64, user entity.UserID) error
	ListByEvent(ctx context.Context, eventID int64, skip, limit int) ([]entity.Registration, error)
}
