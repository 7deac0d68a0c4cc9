package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/testutil/memrepo"
)

var (
	alice = entity.Identity{ID: 1, Email: "a@x.com", Username: "alice"}
	bob   = entity.Identity{ID: 2, Email: "b@x.com", Username: "bob"}
	carol = entity.Identity{ID: 3, Email: "c@x.com", Username: "carol"}
	dave  = entity.Identity{ID: 4, Email: "d@x.com", Username: "dave"}
)

func intp(n int) *int { return &n }

func newEvents(t *testing.T) (*EventService, *memrepo.Events, *recordingNotifier) {
	t.Helper()
	store := memrepo.NewEvents()
	notes := &recordingNotifier{}
	return NewEventService(store, store, notes, nil, quietLogger()), store, notes
}

func mustCreate(t *testing.T, s *EventService, who entity.Identity, in CreateEventInput) *entity.Event {
	t.Helper()
	if in.StartDate.IsZero() {
		in.StartDate = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	}
	e, err := s.CreateEvent(context.Background(), who, in)
	require.NoError(t, err)
	return e
}

func currentParticipants(t *testing.T, s *EventService, id int64) int {
	t.Helper()
	e, err := s.GetEvent(context.Background(), id)
	require.NoError(t, err)
	return e.CurrentParticipants
}

func TestCreateEventDefaultsAndValidation(t *testing.T) {
	s, _, notes := newEvents(t)
	ctx := context.Background()

	desc := `<p>Talks</p><script>alert(1)</script>`
	e := mustCreate(t, s, alice, CreateEventInput{Title: "  <b>Conf</b> ", Description: &desc})
	assert.Equal(t, "Conf", e.Title)
	assert.Equal(t, entity.CategoryOther, e.Category)
	assert.Equal(t, alice.ID, e.OrganizerID)
	assert.True(t, e.IsPublished)
	assert.Zero(t, e.CurrentParticipants)
	require.NotNil(t, e.Description)
	assert.NotContains(t, *e.Description, "script")

	sent := notes.all()
	require.Len(t, sent, 1)
	assert.Equal(t, entity.NotificationEventCreated, sent[0].NotificationType)
	assert.Equal(t, alice.ID, sent[0].UserID)
	assert.Equal(t, alice.Email, sent[0].RecipientEmail)
	require.NotNil(t, sent[0].EventID)
	assert.Equal(t, e.ID, *sent[0].EventID)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]CreateEventInput{
		"title":            {Title: "   ", StartDate: start},
		"category":         {Title: "x", Category: "rave", StartDate: start},
		"start_date":       {Title: "x"},
		"max_participants": {Title: "x", StartDate: start, MaxParticipants: intp(0)},
	}
	for field, in := range cases {
		_, err := s.CreateEvent(ctx, alice, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestListEventsDateRangeAndOrdering(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	at := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 10, 0, 0, 0, time.UTC) }

	mustCreate(t, s, alice, CreateEventInput{Title: "may", StartDate: at(time.May, 31)})
	early := mustCreate(t, s, alice, CreateEventInput{Title: "early", StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)})
	mid := mustCreate(t, s, alice, CreateEventInput{Title: "mid", StartDate: at(time.June, 15)})
	edge := mustCreate(t, s, alice, CreateEventInput{Title: "edge", StartDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})
	mustCreate(t, s, alice, CreateEventInput{Title: "july", StartDate: at(time.July, 1)})
	hidden := mustCreate(t, s, alice, CreateEventInput{Title: "hidden", StartDate: at(time.June, 20)})
	_, err := s.UpdateEvent(ctx, alice, hidden.ID, entity.EventPatch{IsPublished: entity.Some(false)})
	require.NoError(t, err)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	got, err := s.ListEvents(ctx, entity.EventFilter{DateFrom: &from, DateTo: &to}, 0, DefaultLimit)
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{edge.ID, mid.ID, early.ID}, ids)

	_, err = s.ListEvents(ctx, entity.EventFilter{Category: "rave"}, 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.ListEvents(ctx, entity.EventFilter{}, 0, MaxLimit+1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetEventIncludesUnpublished(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "draft"})
	_, err := s.UpdateEvent(ctx, alice, e.ID, entity.EventPatch{IsPublished: entity.Some(false)})
	require.NoError(t, err)

	got, err := s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)

	_, err = s.GetEvent(ctx, 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEventPatchSemantics(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	loc := "Hall A"
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf", Location: &loc, MaxParticipants: intp(10)})

	_, err := s.UpdateEvent(ctx, bob, e.ID, entity.EventPatch{Title: entity.Some("mine now")})
	assert.ErrorIs(t, err, ErrNotOrganizer)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdateEvent(ctx, alice, 404, entity.EventPatch{Title: entity.Some("x")})
	assert.ErrorIs(t, err, ErrEventNotFound)

	for field, p := range map[string]entity.EventPatch{
		"title":            {Title: entity.Null[string]()},
		"category":         {Category: entity.Null[entity.Category]()},
		"start_date":       {StartDate: entity.Null[time.Time]()},
		"is_published":     {IsPublished: entity.Null[bool]()},
		"max_participants": {MaxParticipants: entity.Some(-1)},
	} {
		_, err := s.UpdateEvent(ctx, alice, e.ID, p)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}

	// absent members stay, null members clear
	got, err := s.UpdateEvent(ctx, alice, e.ID, entity.EventPatch{
		Title:           entity.Some("Conf 2"),
		Location:        entity.Null[string](),
		MaxParticipants: entity.Null[int](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Conf 2", got.Title)
	assert.Nil(t, got.Location)
	assert.Nil(t, got.MaxParticipants)
	assert.Equal(t, entity.CategoryOther, got.Category)
	assert.NotNil(t, got.UpdatedAt)
}

func TestDeleteEvent(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf"})
	_, err := s.Register(ctx, bob, e.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteEvent(ctx, bob, e.ID), ErrNotOrganizer)
	require.NoError(t, s.DeleteEvent(ctx, alice, e.ID))
	assert.ErrorIs(t, s.DeleteEvent(ctx, alice, e.ID), ErrEventNotFound)

	regs, err := s.EventsRegisteredBy(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestRegisterUnregisterRestoresCounter(t *testing.T) {
	s, _, notes := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf", MaxParticipants: intp(5)})
	before := currentParticipants(t, s, e.ID)

	reg, err := s.Register(ctx, bob, e.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationConfirmed, reg.Status)
	assert.Equal(t, bob.ID, reg.UserID)
	assert.Equal(t, before+1, currentParticipants(t, s, e.ID))

	sent := notes.all()
	require.Len(t, sent, 2)
	assert.Equal(t, entity.NotificationEventRegistration, sent[1].NotificationType)
	assert.Equal(t, bob.ID, sent[1].UserID)
	assert.Contains(t, sent[1].Message, "Conf")

	require.NoError(t, s.Unregister(ctx, bob, e.ID))
	assert.Equal(t, before, currentParticipants(t, s, e.ID))
}

func TestRegisterTwiceYieldsOneConflict(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf"})

	_, err := s.Register(ctx, bob, e.ID)
	require.NoError(t, err)
	_, err = s.Register(ctx, bob, e.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, currentParticipants(t, s, e.ID))
}

func TestConcurrentRegisterSameUser(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf"})

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, bob, e.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, currentParticipants(t, s, e.ID))
}

func TestCapacityBoundary(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Tiny", MaxParticipants: intp(1)})

	_, err := s.Register(ctx, bob, e.ID)
	require.NoError(t, err)
	_, err = s.Register(ctx, carol, e.ID)
	assert.ErrorIs(t, err, ErrEventFull)

	require.NoError(t, s.Unregister(ctx, bob, e.ID))
	_, err = s.Register(ctx, carol, e.ID)
	require.NoError(t, err)
	_, err = s.Register(ctx, dave, e.ID)
	assert.ErrorIs(t, err, ErrEventFull)
	assert.Equal(t, 1, currentParticipants(t, s, e.ID))
}

func TestRegisterErrorPrecedence(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()

	_, err := s.Register(ctx, bob, 404)
	assert.ErrorIs(t, err, ErrEventNotFound)

	e := mustCreate(t, s, alice, CreateEventInput{Title: "Tiny", MaxParticipants: intp(1)})
	_, err = s.Register(ctx, bob, e.ID)
	require.NoError(t, err)
	// already registered wins over full
	_, err = s.Register(ctx, bob, e.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestUnregisterFloorsCounter(t *testing.T) {
	s, store, _ := newEvents(t)
	ctx := context.Background()
	e := mustCreate(t, s, alice, CreateEventInput{Title: "Conf"})

	assert.ErrorIs(t, s.Unregister(ctx, bob, e.ID), ErrRegistrationNotFound)

	_, err := s.Register(ctx, bob, e.ID)
	require.NoError(t, err)
	store.SetCounter(e.ID, 0)

	require.NoError(t, s.Unregister(ctx, bob, e.ID))
	assert.Equal(t, 0, currentParticipants(t, s, e.ID))
}

func TestRegistrationFlowEndToEnd(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()

	conf := mustCreate(t, s, alice, CreateEventInput{Title: "Conf", MaxParticipants: intp(2)})

	_, err := s.Register(ctx, bob, conf.ID)
	require.NoError(t, err)
	_, err = s.Register(ctx, carol, conf.ID)
	require.NoError(t, err)

	_, err = s.Register(ctx, dave, conf.ID)
	require.ErrorIs(t, err, ErrEventFull)

	require.NoError(t, s.Unregister(ctx, bob, conf.ID))
	_, err = s.Register(ctx, dave, conf.ID)
	require.NoError(t, err)

	parts, err := s.ListParticipants(ctx, conf.ID, 0, DefaultLimit)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, carol.ID, parts[0].UserID)
	assert.Equal(t, dave.ID, parts[1].UserID)
	assert.Equal(t, 2, currentParticipants(t, s, conf.ID))
}

func TestOrganizerAndRegisteredListings(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()
	a := mustCreate(t, s, alice, CreateEventInput{Title: "A"})
	b := mustCreate(t, s, alice, CreateEventInput{Title: "B"})
	mustCreate(t, s, bob, CreateEventInput{Title: "C"})

	mine, err := s.EventsByOrganizer(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = s.Register(ctx, carol, a.ID)
	require.NoError(t, err)
	_, err = s.Register(ctx, carol, b.ID)
	require.NoError(t, err)
	reg, err := s.EventsRegisteredBy(ctx, carol)
	require.NoError(t, err)
	assert.Len(t, reg, 2)

	_, err = s.ListParticipants(ctx, a.ID, -1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

type stubIndex struct {
	mu      sync.Mutex
	indexed []int64
	removed []int64
	hits    []int64
	err     error
	size    int
}

func (x *stubIndex) Index(_ context.Context, e *entity.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.indexed = append(x.indexed, e.ID)
}

func (x *stubIndex) Remove(_ context.Context, id int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removed = append(x.removed, id)
}

func (x *stubIndex) Search(_ context.Context, _ string, size int) ([]int64, error) {
	x.size = size
	return x.hits, x.err
}

func TestSearchEvents(t *testing.T) {
	s, _, _ := newEvents(t)
	ctx := context.Background()

	_, err := s.SearchEvents(ctx, "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.SearchEvents(ctx, "go", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	idx := &stubIndex{}
	s.Index = idx
	a := mustCreate(t, s, alice, CreateEventInput{Title: "Go meetup"})
	b := mustCreate(t, s, alice, CreateEventInput{Title: "Go conf"})
	hidden := mustCreate(t, s, alice, CreateEventInput{Title: "Go draft"})
	_, err = s.UpdateEvent(ctx, alice, hidden.ID, entity.EventPatch{IsPublished: entity.Some(false)})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, hidden.ID, hidden.ID}, idx.indexed)

	idx.hits = []int64{b.ID, hidden.ID, 999, a.ID}
	got, err = s.SearchEvents(ctx, "go", 500)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.size)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	idx.err = errBoom
	_, err = s.SearchEvents(ctx, "go", 5)
	assert.ErrorIs(t, err, errBoom)

	require.NoError(t, s.DeleteEvent(ctx, alice, a.ID))
	assert.Equal(t, []int64{a.ID}, idx.removed)
}
