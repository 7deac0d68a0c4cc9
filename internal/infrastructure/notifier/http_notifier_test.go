package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

func TestNotifyPostsPayload(t *testing.T) {
	var mu sync.Mutex
	var got []entity.NewNotification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notifications/", r.URL.Path)
		var n entity.NewNotification
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, time.Second, helpers.NewNopLogger())
	eventID := int64(4)
	n.Notify(entity.NewNotification{
		UserID:           2,
		EventID:          &eventID,
		NotificationType: entity.NotificationEventRegistration,
		Message:          "You registered for the event 'Go'",
		RecipientEmail:   "b@example.com",
	})
	require.NoError(t, n.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0].UserID)
	assert.EqualValues(t, 4, *got[0].EventID)
	assert.Equal(t, "b@example.com", got[0].RecipientEmail)
}

func TestNotifyDoesNotBlockOnSlowService(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	n := NewHTTPNotifier(srv.URL, 100*time.Millisecond, helpers.NewNopLogger())
	start := time.Now()
	n.Notify(entity.NewNotification{UserID: 1, NotificationType: "event_created", Message: "m"})
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, n.Wait(ctx))
}

func TestNotifyUnreachableServiceIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := NewHTTPNotifier(url, time.Second, helpers.NewNopLogger())
	n.Notify(entity.NewNotification{UserID: 1, NotificationType: "event_created", Message: "m"})
	assert.NoError(t, n.Wait(context.Background()))
}
