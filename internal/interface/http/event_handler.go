package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
	"github.com/oksasatya/go-event-platform/pkg/response"
)

type EventHandler struct {
	Svc    *application.EventService
	Logger *logrus.Logger
}

func NewEventHandler(svc *application.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Svc: svc, Logger: logger}
}

// eventTime accepts RFC 3339 and zone-less datetime-local strings.
type eventTime time.Time

func (t *eventTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := parseTimestamp(s)
	if !ok {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	*t = eventTime(parsed)
	return nil
}

func (t *eventTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := time.Time(*t)
	return &v
}

type createEventRequest struct {
	Title           string          `json:"title" binding:"required,max=200"`
	Description     *string         `json:"description"`
	Category        entity.Category `json:"category" binding:"omitempty,category"`
	Location        *string         `json:"location"`
	StartDate       *eventTime      `json:"start_date" binding:"required"`
	EndDate         *eventTime      `json:"end_date"`
	MaxParticipants *int            `json:"max_participants" binding:"omitempty,gt=0"`
}

// updateEventRequest keeps omitted and null members apart.
type updateEventRequest struct {
	Title           entity.Optional[string]          `json:"title"`
	Description     entity.Optional[string]          `json:"description"`
	Category        entity.Optional[entity.Category] `json:"category"`
	Location        entity.Optional[string]          `json:"location"`
	StartDate       entity.Optional[eventTime]       `json:"start_date"`
	EndDate         entity.Optional[eventTime]       `json:"end_date"`
	MaxParticipants entity.Optional[int]             `json:"max_participants"`
	IsPublished     entity.Optional[bool]            `json:"is_published"`
}

func timeOpt(o entity.Optional[eventTime]) entity.Optional[time.Time] {
	return entity.Optional[time.Time]{Set: o.Set, Valid: o.Valid, Value: time.Time(o.Value)}
}

func (r updateEventRequest) patch() entity.EventPatch {
	return entity.EventPatch{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Location:        r.Location,
		StartDate:       timeOpt(r.StartDate),
		EndDate:         timeOpt(r.EndDate),
		MaxParticipants: r.MaxParticipants,
		IsPublished:     r.IsPublished,
	}
}

type listEventsQuery struct {
	Category string `form:"category"`
	Location string `form:"location"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type searchQuery struct {
	Q    string `form:"q"`
	Size int    `form:"size"`
}

func (h *EventHandler) caller(c *gin.Context) (entity.Identity, bool) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, h.Logger, application.ErrUnauthorized)
	}
	return who, ok
}

// Create POST /events/
func (h *EventHandler) Create(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Svc.CreateEvent(c.Request.Context(), who, application.CreateEventInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Location:        req.Location,
		StartDate:       time.Time(*req.StartDate),
		EndDate:         req.EndDate.ptr(),
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, e, "event created", nil)
}

// List GET /events/
func (h *EventHandler) List(c *gin.Context) {
	skip, limit, err := page(c)
	if err != nil {
		bindError(c, err)
		return
	}
	var q listEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	f := entity.EventFilter{Category: entity.Category(q.Category), Location: q.Location}
	if f.DateFrom, err = parseDate("date_from", q.DateFrom, false); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if f.DateTo, err = parseDate("date_to", q.DateTo, true); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	events, err := h.Svc.ListEvents(c.Request.Context(), f, skip, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, events, "events", map[string]int{"skip": skip, "limit": limit})
}

// Search GET /events/search?q=&size=
func (h *EventHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	events, err := h.Svc.SearchEvents(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, events, "search results", nil)
}

// Get GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	e, err := h.Svc.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, e, "event", nil)
}

// Update PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Svc.UpdateEvent(c.Request.Context(), who, id, req.patch())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, e, "event updated", nil)
}

// Delete DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Svc.DeleteEvent(c.Request.Context(), who, id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": id}, "Event deleted successfully", nil)
}

// Register POST /events/:id/register
func (h *EventHandler) Register(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	reg, err := h.Svc.Register(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, reg, "Successfully registered for the event", nil)
}

// Unregister DELETE /events/:id/unregister
func (h *EventHandler) Unregister(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Svc.Unregister(c.Request.Context(), who, id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"event_id": id}, "Successfully unregistered from the event", nil)
}

// Participants GET /events/:id/participants
func (h *EventHandler) Participants(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	skip, limit, err := page(c)
	if err != nil {
		bindError(c, err)
		return
	}
	regs, err := h.Svc.ListParticipants(c.Request.Context(), id, skip, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, regs, "participants", map[string]int{"skip": skip, "limit": limit})
}

// MyEvents GET /users/me/events
func (h *EventHandler) MyEvents(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	events, err := h.Svc.EventsByOrganizer(c.Request.Context(), who)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, events, "organized events", nil)
}

// MyRegistrations GET /users/me/registered-events
func (h *EventHandler) MyRegistrations(c *gin.Context) {
	who, ok := h.caller(c)
	if !ok {
		return
	}
	events, err := h.Svc.EventsRegisteredBy(c.Request.Context(), who)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, events, "registered events", nil)
}
