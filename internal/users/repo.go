package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const userCols = `id, name, email, password_hash, COALESCE(address,''), metadata, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address, &u.Metadata, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, name, email, password_hash, address, metadata, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Address, u.Metadata, u.IsAdmin,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *Repo) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error) {
	return scanUser(r.DB.QueryRow(ctx, `
		UPDATE users SET metadata=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+userCols, id, metadata))
}

func (r *Repo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET is_admin=$2, updated_at=now() WHERE id=$1`, id, isAdmin)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
