package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/domain/repository"
)

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Register runs the whole check-and-take sequence under the event row lock.
// The conditional increment and the unique constraint still hold if the
// lock is ever dropped.
func (r *RegistrationRepository) Register(ctx context.Context, eventID int64, user entity.UserID) (*entity.Registration, *entity.Event, error) {
	var (
		reg *entity.Registration
		ev  *entity.Event
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		e, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns("")+` FROM events WHERE id = $1 FOR UPDATE`, eventID))
		if err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`,
			eventID, user).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return repository.ErrDuplicate
		}

		tag, err := tx.Exec(ctx, `
			UPDATE events
			SET current_participants = current_participants + 1
			WHERE id = $1 AND (max_participants IS NULL OR current_participants < max_participants)
		`, eventID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrCapacityReached
		}

		rg := &entity.Registration{EventID: eventID, UserID: user, Status: entity.RegistrationConfirmed}
		if err := tx.QueryRow(ctx, `
			INSERT INTO registrations (event_id, user_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, registered_at
		`, eventID, user, rg.Status).Scan(&rg.ID, &rg.RegisteredAt); err != nil {
			return mapErr(err)
		}

		e.CurrentParticipants++
		reg, ev = rg, e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return reg, ev, nil
}

// Unregister takes the event row lock first, in the same order as Register.
func (r *RegistrationRepository) Unregister(ctx context.Context, eventID int64, user entity.UserID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM events WHERE id = $1 FOR UPDATE`, eventID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`, eventID, user)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			UPDATE events
			SET current_participants = GREATEST(current_participants - 1, 0)
			WHERE id = $1
		`, eventID)
		return err
	})
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64, skip, limit int) ([]entity.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, user_id, registered_at, status
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at ASC, id ASC
		OFFSET $2 LIMIT $3
	`, eventID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Registration, 0)
	for rows.Next() {
		var rg entity.Registration
		if err := rows.Scan(&rg.ID, &rg.EventID, &rg.UserID, &rg.RegisteredAt, &rg.Status); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

var _ repository.RegistrationRepository = (*RegistrationRepository)(nil)
