package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/domain/repository"
)

const notificationColumns = `id, user_id, event_id, notification_type, message, is_read, read_at, created_at`

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	n := &entity.Notification{}
	if err := row.Scan(&n.ID, &n.UserID, &n.EventID, &n.NotificationType, &n.Message,
		&n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, event_id, notification_type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`, n.UserID, n.EventID, n.NotificationType, n.Message)
	return mapErr(row.Scan(&n.ID, &n.IsRead, &n.CreatedAt))
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
}

func (r *NotificationRepository) List(ctx context.Context, f entity.NotificationFilter, skip, limit int) ([]entity.Notification, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID != nil {
		conds = append(conds, "user_id = "+arg(*f.UserID))
	}
	if f.IsRead != nil {
		conds = append(conds, "is_read = "+arg(*f.IsRead))
	}
	q := `SELECT ` + notificationColumns + ` FROM notifications`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC OFFSET ` + arg(skip) + ` LIMIT ` + arg(limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*entity.Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $2
		WHERE id = $1
		RETURNING `+notificationColumns, id, at))
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, user entity.UserID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, user).Scan(&n)
	return n, err
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
