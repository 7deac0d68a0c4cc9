package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-platform/internal/application"
)

type pageQuery struct {
	Skip  *int `form:"skip"`
	Limit *int `form:"limit"`
}

// page binds skip and limit, applying the defaults. Range checks are left
// to application.CheckPage.
func page(c *gin.Context) (int, int, error) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return 0, 0, err
	}
	skip, limit := 0, application.DefaultLimit
	if q.Skip != nil {
		skip = *q.Skip
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	return skip, limit, nil
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &application.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

const dateOnly = "2006-01-02"

// Browsers submit datetime-local values without a zone; those are UTC.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate accepts timestamps and bare dates. A bare date used as an
// upper bound covers the whole day.
func parseDate(field, raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, ok := parseTimestamp(raw); ok {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, &application.ValidationError{Field: field, Reason: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// optionalBool parses "true"/"false"; empty means unset.
func optionalBool(field, raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &application.ValidationError{Field: field, Reason: "must be a boolean"}
	}
	return &b, nil
}
