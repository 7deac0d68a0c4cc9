package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/domain/repository"
)

var eventColumnNames = []string{
	"id", "title", "description", "category", "location", "start_date", "end_date",
	"organizer_id", "max_participants", "current_participants", "is_published",
	"created_at", "updated_at",
}

// eventColumns renders the select list, optionally qualified by alias.
func eventColumns(alias string) string {
	if alias == "" {
		return strings.Join(eventColumnNames, ", ")
	}
	cols := make([]string, len(eventColumnNames))
	for i, c := range eventColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	e := &entity.Event{}
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Location,
		&e.StartDate, &e.EndDate, &e.OrganizerID, &e.MaxParticipants,
		&e.CurrentParticipants, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

func collectEvents(rows pgx.Rows, err error) ([]entity.Event, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (title, description, category, location, start_date, end_date,
		                    organizer_id, max_participants, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_participants, created_at
	`, e.Title, e.Description, string(e.Category), e.Location, e.StartDate, e.EndDate,
		e.OrganizerID, e.MaxParticipants, e.IsPublished)

	return mapErr(row.Scan(&e.ID, &e.CurrentParticipants, &e.CreatedAt))
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns("")+` FROM events WHERE id = $1`, id))
}

// escapeLike makes s a literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *EventRepository) List(ctx context.Context, f entity.EventFilter, skip, limit int) ([]entity.Event, error) {
	conds := []string{"is_published = TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		conds = append(conds, "category = "+arg(string(f.Category)))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		conds = append(conds, "location ILIKE "+arg("%"+escapeLike(loc)+"%"))
	}
	if f.DateFrom != nil {
		conds = append(conds, "start_date >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "start_date <= "+arg(*f.DateTo))
	}

	q := `SELECT ` + eventColumns("") + ` FROM events WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY start_date DESC, id DESC OFFSET ` + arg(skip) + ` LIMIT ` + arg(limit)
	return collectEvents(r.pool.Query(ctx, q, args...))
}

func (r *EventRepository) ListPublishedByIDs(ctx context.Context, ids []int64) ([]entity.Event, error) {
	found, err := collectEvents(r.pool.Query(ctx,
		`SELECT `+eventColumns("")+` FROM events WHERE id = ANY($1) AND is_published = TRUE`, ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]entity.Event, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	out := make([]entity.Event, 0, len(found))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
			delete(byID, id)
		}
	}
	return out, nil
}

// Update writes every editable column. current_participants is owned by
// the registration transactions and is only read back.
func (r *EventRepository) Update(ctx context.Context, e *entity.Event) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE events
		SET title = $1, description = $2, category = $3, location = $4, start_date = $5,
		    end_date = $6, max_participants = $7, is_published = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING current_participants, updated_at
	`, e.Title, e.Description, string(e.Category), e.Location, e.StartDate, e.EndDate,
		e.MaxParticipants, e.IsPublished, e.ID).Scan(&e.CurrentParticipants, &e.UpdatedAt)
	return mapErr(err)
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizer entity.UserID) ([]entity.Event, error) {
	return collectEvents(r.pool.Query(ctx,
		`SELECT `+eventColumns("")+` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC, id DESC`, organizer))
}

func (r *EventRepository) ListRegisteredBy(ctx context.Context, user entity.UserID) ([]entity.Event, error) {
	return collectEvents(r.pool.Query(ctx, `
		SELECT `+eventColumns("e")+`
		FROM events e
		JOIN registrations r ON r.event_id = e.id
		WHERE r.user_id = $1
		ORDER BY e.start_date DESC, e.id DESC
	`, user))
}

var _ repository.EventRepository = (*EventRepository)(nil)
