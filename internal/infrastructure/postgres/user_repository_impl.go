package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/domain/repository"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

const userColumns = `id, email, username, full_name, hashed_password, is_active, avatar_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.HashedPassword,
		&u.IsActive, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, full_name, hashed_password, is_active, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Username, u.FullName, u.HashedPassword, u.IsActive, u.AvatarURL)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id entity.UserID) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $1, username = $2, full_name = $3, hashed_password = $4,
		    is_active = $5, avatar_url = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`, u.Email, u.Username, u.FullName, u.HashedPassword, u.IsActive, u.AvatarURL, u.ID).Scan(&u.UpdatedAt)
	return mapErr(err)
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// SeedAdmin inserts the bootstrap user unless the email or username exists.
// It reports whether a row was created.
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, email, username, fullName, password string) (bool, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return false, err
	}
	tag, err := pool.Exec(ctx, `
		INSERT INTO users (email, username, full_name, hashed_password, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT DO NOTHING
	`, email, username, fullName, hash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
