package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// EventIndex keeps a searchable copy of events in Elasticsearch. Writes are
// best effort: failures are logged and never fail the request that caused
// them. The database stays the source of truth.
type EventIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

func NewEventIndex(es *elasticsearch.Client, name string, logger *logrus.Logger) *EventIndex {
	return &EventIndex{ES: es, Name: name, Logger: logger}
}

type eventDoc struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	Location    *string `json:"location,omitempty"`
	StartDate   string  `json:"start_date"`
	OrganizerID int64   `json:"organizer_id"`
	IsPublished bool    `json:"is_published"`
}

func (x *EventIndex) Index(ctx context.Context, e *entity.Event) {
	doc := eventDoc{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    string(e.Category),
		Location:    e.Location,
		StartDate:   e.StartDate.Format(time.RFC3339Nano),
		OrganizerID: int64(e.OrganizerID),
		IsPublished: e.IsPublished,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      x.Name,
		DocumentID: strconv.FormatInt(e.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.Logger.WithError(err).WithField("event_id", e.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		x.Logger.WithField("status", res.Status()).WithField("event_id", e.ID).Warn("es index response error")
	}
}

func (x *EventIndex) Remove(ctx context.Context, id int64) {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.Logger.WithError(err).WithField("event_id", id).Warn("es delete failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means the document was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		x.Logger.WithField("status", res.Status()).WithField("event_id", id).Warn("es delete response error")
	}
}

// Search runs a multi_match over the text fields of published events and
// returns the matching ids in relevance order.
func (x *EventIndex) Search(ctx context.Context, q string, size int) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^3", "description", "location", "category"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"is_published": true}},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Name),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		// An index that was never written to has nothing to find.
		if res.StatusCode == 404 {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
