// Package memrepo holds in-memory repositories for service and handler tests.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-event-platform/internal/domain/repository"
)

// Users is an in-memory UserRepository.
type Users struct {
	mu     sync.Mutex
	nextID entity.UserID
	rows   map[entity.UserID]entity.User
}

func NewUsers() *Users {
	return &Users{rows: map[entity.UserID]entity.User{}}
}

func (m *Users) clash(u *entity.User) bool {
	for _, r := range m.rows {
		if r.ID == u.ID {
			continue
		}
		if r.Email == u.Email || r.Username == u.Username {
			return true
		}
	}
	return false
}

func (m *Users) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clash(u) {
		return repo.ErrDuplicate
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.rows[u.ID] = *u
	return nil
}

func (m *Users) find(match func(entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if match(r) {
			u := r
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *Users) GetByID(_ context.Context, id entity.UserID) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.ID == id })
}

func (m *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Email == email })
}

func (m *Users) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Username == username })
}

func (m *Users) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.ID]; !ok {
		return repo.ErrNotFound
	}
	if m.clash(u) {
		return repo.ErrDuplicate
	}
	u.UpdatedAt = time.Now().UTC()
	m.rows[u.ID] = *u
	return nil
}

func (m *Users) List(_ context.Context, skip, limit int) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, skip, limit), nil
}

func window[T any](rows []T, skip, limit int) []T {
	if skip >= len(rows) {
		return []T{}
	}
	rows = rows[skip:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

type regKey struct {
	event int64
	user  entity.UserID
}

// Events holds events and registrations behind one mutex, which plays
// the part of the event row lock.
type Events struct {
	mu      sync.Mutex
	nextID  int64
	nextReg int64
	events  map[int64]entity.Event
	regs    map[regKey]entity.Registration
}

func NewEvents() *Events {
	return &Events{events: map[int64]entity.Event{}, regs: map[regKey]entity.Registration{}}
}

func (m *Events) Create(_ context.Context, e *entity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now().UTC()
	m.events[e.ID] = *e
	return nil
}

func (m *Events) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &e, nil
}

func (m *Events) List(_ context.Context, f entity.EventFilter, skip, limit int) ([]entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Event{}
	for _, e := range m.events {
		switch {
		case !e.IsPublished:
		case f.Category != "" && e.Category != f.Category:
		case f.Location != "" && (e.Location == nil || !strings.Contains(strings.ToLower(*e.Location), strings.ToLower(f.Location))):
		case f.DateFrom != nil && e.StartDate.Before(*f.DateFrom):
		case f.DateTo != nil && e.StartDate.After(*f.DateTo):
		default:
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return window(out, skip, limit), nil
}

func (m *Events) ListPublishedByIDs(_ context.Context, ids []int64) ([]entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Event{}
	for _, id := range ids {
		if e, ok := m.events[id]; ok && e.IsPublished {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Events) Update(_ context.Context, e *entity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return repo.ErrNotFound
	}
	now := time.Now().UTC()
	e.UpdatedAt = &now
	m.events[e.ID] = *e
	return nil
}

func (m *Events) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.events, id)
	for k := range m.regs {
		if k.event == id {
			delete(m.regs, k)
		}
	}
	return nil
}

func (m *Events) ListByOrganizer(_ context.Context, organizer entity.UserID) ([]entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Event{}
	for _, e := range m.events {
		if e.OrganizerID == organizer {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Events) ListRegisteredBy(_ context.Context, user entity.UserID) ([]entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Event{}
	for k := range m.regs {
		if k.user == user {
			out = append(out, m.events[k.event])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *Events) Register(_ context.Context, eventID int64, user entity.UserID) (*entity.Registration, *entity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, nil, repo.ErrNotFound
	}
	k := regKey{eventID, user}
	if _, ok := m.regs[k]; ok {
		return nil, nil, repo.ErrDuplicate
	}
	if e.Full() {
		return nil, nil, repo.ErrCapacityReached
	}
	e.CurrentParticipants++
	m.events[eventID] = e
	m.nextReg++
	r := entity.Registration{ID: m.nextReg, EventID: eventID, UserID: user, RegisteredAt: time.Now().UTC(), Status: entity.RegistrationConfirmed}
	m.regs[k] = r
	return &r, &e, nil
}

func (m *Events) Unregister(_ context.Context, eventID int64, user entity.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := regKey{eventID, user}
	if _, ok := m.regs[k]; !ok {
		return repo.ErrNotFound
	}
	delete(m.regs, k)
	e := m.events[eventID]
	if e.CurrentParticipants > 0 {
		e.CurrentParticipants--
	}
	m.events[eventID] = e
	return nil
}

func (m *Events) ListByEvent(_ context.Context, eventID int64, skip, limit int) ([]entity.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Registration{}
	for k, r := range m.regs {
		if k.event == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, skip, limit), nil
}

// SetCounter forces the denormalized counter, for floor tests.
func (m *Events) SetCounter(id int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[id]
	e.CurrentParticipants = n
	m.events[id] = e
}

// Notifications is an in-memory NotificationRepository.
type Notifications struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{rows: map[int64]entity.Notification{}}
}

func (m *Notifications) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now().UTC()
	m.rows[n.ID] = *n
	return nil
}

func (m *Notifications) GetByID(_ context.Context, id int64) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &n, nil
}

func (m *Notifications) List(_ context.Context, f entity.NotificationFilter, skip, limit int) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Notification{}
	for _, n := range m.rows {
		if f.UserID != nil && n.UserID != *f.UserID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, skip, limit), nil
}

func (m *Notifications) MarkRead(_ context.Context, id int64, at time.Time) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	m.rows[id] = n
	return &n, nil
}

func (m *Notifications) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *Notifications) UnreadCount(_ context.Context, user entity.UserID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c int64
	for _, n := range m.rows {
		if n.UserID == user && !n.IsRead {
			c++
		}
	}
	return c, nil
}
