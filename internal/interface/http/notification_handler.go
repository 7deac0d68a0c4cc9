package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

type listNotificationsQuery struct {
	UserID *int64 `form:"user_id"`
	IsRead string `form:"is_read"`
}

// Create POST /notifications/
func (h *NotificationHandler) Create(c *gin.Context) {
	var req entity.NewNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	n, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, n, "notification created", nil)
}

// List GET /notifications/?user_id=&is_read=
func (h *NotificationHandler) List(c *gin.Context) {
	skip, limit, err := page(c)
	if err != nil {
		bindError(c, err)
		return
	}
	var q listNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	var f entity.NotificationFilter
	if q.UserID != nil {
		uid := entity.UserID(*q.UserID)
		f.UserID = &uid
	}
	if f.IsRead, err = optionalBool("is_read", q.IsRead); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	list, err := h.Svc.List(c.Request.Context(), f, skip, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "notifications", map[string]int{"skip": skip, "limit": limit})
}

// Get GET /notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	n, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, n, "notification", nil)
}

// MarkRead PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	n, err := h.Svc.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, n, "Notification marked as read", nil)
}

// Delete DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": id}, "Notification deleted successfully", nil)
}

type unreadCount struct {
	UserID      entity.UserID `json:"user_id"`
	UnreadCount int64         `json:"unread_count"`
}

// UnreadCount GET /users/:id/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	n, err := h.Svc.UnreadCount(c.Request.Context(), entity.UserID(id))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, unreadCount{UserID: entity.UserID(id), UnreadCount: n}, "unread count", nil)
}
