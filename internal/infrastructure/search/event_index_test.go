package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

type recorded struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records what it was sent.
func fakeES(t *testing.T, searchStatus int, searchBody string) (*EventIndex, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			w.WriteHeader(searchStatus)
			_, _ = w.Write([]byte(searchBody))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx := NewEventIndex(es, "events", helpers.NewNopLogger())
	return idx, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestIndexWritesDocument(t *testing.T) {
	idx, calls := fakeES(t, 200, `{}`)
	loc := "Berlin"
	idx.Index(context.Background(), &entity.Event{
		ID:          42,
		Title:       "Go Meetup",
		Category:    entity.CategoryMeetup,
		Location:    &loc,
		StartDate:   time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		OrganizerID: 3,
		IsPublished: true,
	})

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].Method)
	assert.Equal(t, "/events/_doc/42", got[0].Path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[0].Body), &doc))
	assert.Equal(t, "Go Meetup", doc["title"])
	assert.Equal(t, "Berlin", doc["location"])
	assert.Equal(t, true, doc["is_published"])
}

func TestRemoveToleratesMissingDocument(t *testing.T) {
	idx, calls := fakeES(t, 200, `{}`)
	idx.Remove(context.Background(), 9)

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodDelete, got[0].Method)
	assert.Equal(t, "/events/_doc/9", got[0].Path)
}

func TestSearchReturnsIDsInHitOrder(t *testing.T) {
	idx, calls := fakeES(t, 200, `{"hits":{"hits":[{"_id":"5"},{"_id":"x"},{"_id":"2"}]}}`)

	ids, err := idx.Search(context.Background(), "meetup", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2}, ids)

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, "/events/_search", got[0].Path)
	assert.Contains(t, got[0].Body, `"query":"meetup"`)
	assert.Contains(t, got[0].Body, `"is_published":true`)
	assert.Contains(t, got[0].Body, `"size":10`)
}

func TestSearchMissingIndexIsEmpty(t *testing.T) {
	idx, _ := fakeES(t, 404, `{"error":{"type":"index_not_found_exception"}}`)
	ids, err := idx.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchServerError(t *testing.T) {
	idx, _ := fakeES(t, 500, `{"error":"boom"}`)
	_, err := idx.Search(context.Background(), "anything", 10)
	assert.Error(t, err)
}
