package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-event-platform/internal/domain/repository"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
	"github.com/oksasatya/go-event-platform/pkg/sanitize"
)

const maxTitleLen = 200

// Notifier hands a notification to the notification service without
// waiting for it. Implementations must never block the caller.
type Notifier interface {
	Notify(n entity.NewNotification)
}

// EventIndex is the optional full-text index over events.
type EventIndex interface {
	Index(ctx context.Context, e *entity.Event)
	Remove(ctx context.Context, id int64)
	Search(ctx context.Context, q string, size int) ([]int64, error)
}

// EventService is the event catalog and registration engine.
type EventService struct {
	Events        repo.EventRepository
	Registrations repo.RegistrationRepository
	Notifier      Notifier
	Index         EventIndex
	Logger        *logrus.Logger
}

func NewEventService(events repo.EventRepository, regs repo.RegistrationRepository, notifier Notifier, index EventIndex, logger *logrus.Logger) *EventService {
	return &EventService{Events: events, Registrations: regs, Notifier: notifier, Index: index, Logger: logger}
}

type CreateEventInput struct {
	Title           string
	Description     *string
	Category        entity.Category
	Location        *string
	StartDate       time.Time
	EndDate         *time.Time
	MaxParticipants *int
}

// validate strips markup from the text fields, then checks them.
func (in *CreateEventInput) validate() error {
	in.Title = strings.TrimSpace(sanitize.Text(in.Title))
	in.Description = sanitize.HTMLPtr(in.Description)
	in.Location = sanitize.TextPtr(in.Location)

	if n := utf8.RuneCountInString(in.Title); n < 1 || n > maxTitleLen {
		return invalid("title", fmt.Sprintf("must be 1 to %d characters long", maxTitleLen))
	}
	if in.Category == "" {
		in.Category = entity.CategoryOther
	}
	if !in.Category.Valid() {
		return invalid("category", "unknown category")
	}
	if in.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if in.MaxParticipants != nil && *in.MaxParticipants <= 0 {
		return invalid("max_participants", "must be greater than 0")
	}
	return nil
}

// CreateEvent stores a published event organized by the caller.
func (s *EventService) CreateEvent(ctx context.Context, who entity.Identity, in CreateEventInput) (*entity.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &entity.Event{
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Location:        in.Location,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		OrganizerID:     who.ID,
		MaxParticipants: in.MaxParticipants,
		IsPublished:     true,
	}
	if err := s.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"event_id": e.ID, "organizer": who.Email}).Info("event created")

	s.index(ctx, e)
	s.notify(who, e.ID, entity.NotificationEventCreated, fmt.Sprintf("You created the event '%s'", e.Title))
	return e, nil
}

// ListEvents returns published events only.
func (s *EventService) ListEvents(ctx context.Context, f entity.EventFilter, skip, limit int) ([]entity.Event, error) {
	if err := CheckPage(skip, limit); err != nil {
		return nil, err
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, invalid("category", "unknown category")
	}
	return s.Events.List(ctx, f, skip, limit)
}

// GetEvent returns the event whether or not it is published.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	e, err := s.Events.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func cleanPatch(p *entity.EventPatch) {
	if p.Title.Valid {
		p.Title.Value = strings.TrimSpace(sanitize.Text(p.Title.Value))
	}
	if p.Description.Valid {
		p.Description.Value = sanitize.HTML(p.Description.Value)
	}
	if p.Location.Valid {
		p.Location.Value = sanitize.Text(p.Location.Value)
	}
}

func validatePatch(p entity.EventPatch) error {
	if p.Title.Set {
		if !p.Title.Valid {
			return invalid("title", "must not be null")
		}
		if n := utf8.RuneCountInString(p.Title.Value); n < 1 || n > maxTitleLen {
			return invalid("title", fmt.Sprintf("must be 1 to %d characters long", maxTitleLen))
		}
	}
	if p.Category.Set {
		if !p.Category.Valid {
			return invalid("category", "must not be null")
		}
		if !p.Category.Value.Valid() {
			return invalid("category", "unknown category")
		}
	}
	if p.StartDate.Set && !p.StartDate.Valid {
		return invalid("start_date", "must not be null")
	}
	if p.IsPublished.Set && !p.IsPublished.Valid {
		return invalid("is_published", "must not be null")
	}
	if p.MaxParticipants.Valid && p.MaxParticipants.Value <= 0 {
		return invalid("max_participants", "must be greater than 0")
	}
	return nil
}

// UpdateEvent applies a partial update. Only the organizer may update.
func (s *EventService) UpdateEvent(ctx context.Context, who entity.Identity, id int64, patch entity.EventPatch) (*entity.Event, error) {
	cleanPatch(&patch)
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != who.ID {
		return nil, ErrNotOrganizer
	}
	patch.Apply(e)
	if err := s.Events.Update(ctx, e); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	s.index(ctx, e)
	return e, nil
}

// DeleteEvent removes the event and all its registrations.
func (s *EventService) DeleteEvent(ctx context.Context, who entity.Identity, id int64) error {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if e.OrganizerID != who.ID {
		return ErrNotOrganizer
	}
	if err := s.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if s.Index != nil {
		s.Index.Remove(ctx, id)
	}
	s.Logger.WithFields(logrus.Fields{"event_id": id, "organizer": who.Email}).Info("event deleted")
	return nil
}

// Register takes one seat for the caller. Checks run in the order
// not found, already registered, full.
func (s *EventService) Register(ctx context.Context, who entity.Identity, eventID int64) (*entity.Registration, error) {
	reg, e, err := s.Registrations.Register(ctx, eventID, who.ID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		metrics.Registrations.WithLabelValues("not_found").Inc()
		return nil, ErrEventNotFound
	case errors.Is(err, repo.ErrDuplicate):
		metrics.Registrations.WithLabelValues("already_registered").Inc()
		return nil, ErrAlreadyRegistered
	case errors.Is(err, repo.ErrCapacityReached):
		metrics.Registrations.WithLabelValues("full").Inc()
		return nil, ErrEventFull
	case err != nil:
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Registrations.WithLabelValues("registered").Inc()
	s.Logger.WithFields(logrus.Fields{"event_id": eventID, "user": who.Email}).Info("user registered for event")

	s.notify(who, eventID, entity.NotificationEventRegistration, fmt.Sprintf("You registered for the event '%s'", e.Title))
	return reg, nil
}

// Unregister frees the caller's seat.
func (s *EventService) Unregister(ctx context.Context, who entity.Identity, eventID int64) error {
	err := s.Registrations.Unregister(ctx, eventID, who.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRegistrationNotFound
	}
	if err != nil {
		return err
	}
	metrics.Registrations.WithLabelValues("unregistered").Inc()
	return nil
}

// ListParticipants returns registrations oldest first.
func (s *EventService) ListParticipants(ctx context.Context, eventID int64, skip, limit int) ([]entity.Registration, error) {
	if err := CheckPage(skip, limit); err != nil {
		return nil, err
	}
	return s.Registrations.ListByEvent(ctx, eventID, skip, limit)
}

// EventsByOrganizer includes unpublished events, newest created first.
func (s *EventService) EventsByOrganizer(ctx context.Context, who entity.Identity) ([]entity.Event, error) {
	return s.Events.ListByOrganizer(ctx, who.ID)
}

// EventsRegisteredBy returns the caller's events, newest start first.
func (s *EventService) EventsRegisteredBy(ctx context.Context, who entity.Identity) ([]entity.Event, error) {
	return s.Events.ListRegisteredBy(ctx, who.ID)
}

// SearchEvents queries the full-text index and loads the hits from the
// database. Without an index it returns no results.
func (s *EventService) SearchEvents(ctx context.Context, q string, size int) ([]entity.Event, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "is required")
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.Index == nil {
		return []entity.Event{}, nil
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entity.Event{}, nil
	}
	return s.Events.ListPublishedByIDs(ctx, ids)
}

func (s *EventService) index(ctx context.Context, e *entity.Event) {
	if s.Index != nil {
		s.Index.Index(ctx, e)
	}
}

func (s *EventService) notify(who entity.Identity, eventID int64, typ, msg string) {
	if s.Notifier == nil {
		return
	}
	id := eventID
	s.Notifier.Notify(entity.NewNotification{
		UserID:           who.ID,
		EventID:          &id,
		NotificationType: typ,
		Message:          msg,
		RecipientEmail:   who.Email,
	})
}
