package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/domain/repository"
)

func intPtr(v int) *int { return &v }

func newEvent(t *testing.T, r *EventRepository, title string, start time.Time, max *int) *entity.Event {
	t.Helper()
	e := &entity.Event{
		Title:           title,
		Category:        entity.CategoryMeetup,
		StartDate:       start,
		OrganizerID:     1,
		MaxParticipants: max,
		IsPublished:     true,
	}
	require.NoError(t, r.Create(context.Background(), e))
	return e
}

func TestUserRepository(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	r := NewUserRepository(pool)

	u := &entity.User{Email: "a@example.com", Username: "alice", FullName: "Alice", HashedPassword: "x", IsActive: true}
	require.NoError(t, r.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = r.Create(ctx, &entity.User{Email: "a@example.com", Username: "other", HashedPassword: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = r.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got.FullName = "Alice Liddell"
	require.NoError(t, r.Update(ctx, got))
	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", again.FullName)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	created, err := SeedAdmin(ctx, pool, "admin@example.com", "admin", "Admin User", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(ctx, pool, "admin@example.com", "admin", "Admin User", "admin123")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)

	e := newEvent(t, events, "Go meetup", time.Now().Add(24*time.Hour), nil)

	reg, ev, err := regs.Register(ctx, e.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationConfirmed, reg.Status)
	assert.Equal(t, 1, ev.CurrentParticipants)

	require.NoError(t, regs.Unregister(ctx, e.ID, 42))
	after, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.CurrentParticipants)

	assert.ErrorIs(t, regs.Unregister(ctx, e.ID, 42), repository.ErrNotFound)
}

func TestRegisterErrorsInOrder(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)

	_, _, err := regs.Register(ctx, 9999, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	e := newEvent(t, events, "Tiny", time.Now(), intPtr(1))
	_, _, err = regs.Register(ctx, e.ID, 1)
	require.NoError(t, err)

	// already registered wins over full
	_, _, err = regs.Register(ctx, e.ID, 1)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, _, err = regs.Register(ctx, e.ID, 2)
	assert.ErrorIs(t, err, repository.ErrCapacityReached)
}

func TestConcurrentDuplicateRegistration(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)
	e := newEvent(t, events, "Race", time.Now(), nil)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = regs.Register(ctx, e.ID, 7)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	}
	assert.Equal(t, 1, ok)

	after, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentParticipants)
}

func TestConcurrentCapacityBoundary(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)
	e := newEvent(t, events, "One seat", time.Now(), intPtr(1))

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = regs.Register(ctx, e.ID, entity.UserID(100+i))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrCapacityReached)
	}
	assert.Equal(t, 1, ok)

	parts, err := regs.ListByEvent(ctx, e.ID, 0, 100)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestUnregisterFloorsCounterAtZero(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)
	e := newEvent(t, events, "Drifted", time.Now(), nil)

	_, _, err := regs.Register(ctx, e.ID, 5)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE events SET current_participants = 0 WHERE id = $1`, e.ID)
	require.NoError(t, err)

	require.NoError(t, regs.Unregister(ctx, e.ID, 5))
	after, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.CurrentParticipants)
}

func TestListEventsFiltersAndOrder(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	early := newEvent(t, events, "early", base, nil)
	mid := newEvent(t, events, "mid", base.AddDate(0, 0, 5), nil)
	late := newEvent(t, events, "late", base.AddDate(0, 0, 10), nil)

	hidden := newEvent(t, events, "hidden", base.AddDate(0, 0, 5), nil)
	hidden.IsPublished = false
	require.NoError(t, events.Update(ctx, hidden))

	from, to := early.StartDate, mid.StartDate
	got, err := events.List(ctx, entity.EventFilter{DateFrom: &from, DateTo: &to}, 0, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, mid.ID, got[0].ID)
	assert.Equal(t, early.ID, got[1].ID)

	all, err := events.List(ctx, entity.EventFilter{}, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, late.ID, all[0].ID)

	loc := "Main Hall"
	late.Location = &loc
	require.NoError(t, events.Update(ctx, late))
	byLoc, err := events.List(ctx, entity.EventFilter{Location: "main"}, 0, 100)
	require.NoError(t, err)
	require.Len(t, byLoc, 1)
	assert.Equal(t, late.ID, byLoc[0].ID)

	byCat, err := events.List(ctx, entity.EventFilter{Category: entity.CategoryParty}, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, byCat)
}

func TestDeleteEventRemovesRegistrations(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)
	e := newEvent(t, events, "Gone", time.Now(), nil)
	_, _, err := regs.Register(ctx, e.ID, 1)
	require.NoError(t, err)

	require.NoError(t, events.Delete(ctx, e.ID))
	_, err = events.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var left int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, e.ID).Scan(&left))
	assert.Zero(t, left)

	assert.ErrorIs(t, events.Delete(ctx, e.ID), repository.ErrNotFound)
}

func TestRegisteredAndOrganizedListings(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	events := NewEventRepository(pool)
	regs := NewRegistrationRepository(pool)

	a := newEvent(t, events, "A", time.Now().Add(time.Hour), nil)
	b := newEvent(t, events, "B", time.Now().Add(2*time.Hour), nil)
	_, _, err := regs.Register(ctx, a.ID, 3)
	require.NoError(t, err)
	_, _, err = regs.Register(ctx, b.ID, 3)
	require.NoError(t, err)

	mine, err := events.ListRegisteredBy(ctx, 3)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, b.ID, mine[0].ID)

	organized, err := events.ListByOrganizer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, organized, 2)
	assert.Equal(t, b.ID, organized[0].ID)

	byIDs, err := events.ListPublishedByIDs(ctx, []int64{a.ID, 12345, b.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, a.ID, byIDs[0].ID)
}

func TestNotificationRepository(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	r := NewNotificationRepository(pool)

	eventID := int64(10)
	first := &entity.Notification{UserID: 1, EventID: &eventID, NotificationType: "event_created", Message: "one"}
	second := &entity.Notification{UserID: 1, NotificationType: "custom", Message: "two"}
	other := &entity.Notification{UserID: 2, NotificationType: "custom", Message: "three"}
	for _, n := range []*entity.Notification{first, second, other} {
		require.NoError(t, r.Create(ctx, n))
	}

	uid := entity.UserID(1)
	list, err := r.List(ctx, entity.NotificationFilter{UserID: &uid}, 0, 100)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	count, err := r.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	read, err := r.MarkRead(ctx, first.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	count, err = r.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	isRead := true
	readOnly, err := r.List(ctx, entity.NotificationFilter{IsRead: &isRead}, 0, 100)
	require.NoError(t, err)
	require.Len(t, readOnly, 1)

	require.NoError(t, r.Delete(ctx, first.ID))
	_, err = r.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, first.ID), repository.ErrNotFound)

	_, err = r.MarkRead(ctx, 424242, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
