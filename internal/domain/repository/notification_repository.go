package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id int64) (*entity.Notification, error)
	// List returns newest first.
	List(ctx context.Context, f entity.NotificationFilter, skip, limit int) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (*entity.Notification, error)
	Delete(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context, user entity.UserID) (int64, error)
}
