package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/meridiancap/cms-apiserver/types"
)

// AdminRepository handles persistence for admin accounts.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, username, email, full_name, role, is_active, password_hash, last_login, created_at, updated_at`

func scanAdmin(row rowScanner) (types.Admin, error) {
	var admin types.Admin
	var lastLogin sql.NullTime
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.FullName,
		&admin.Role,
		&admin.IsActive,
		&admin.PasswordHash,
		&lastLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return types.Admin{}, err
	}
	if lastLogin.Valid {
		admin.LastLogin = &lastLogin.Time
	}
	return admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id int) (types.Admin, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE id = $1`
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	return admin, nil
}

// GetByIdentifier looks up an account whose username OR email equals the
// given identifier. Both are checked against the same input: the login
// form accepts either interchangeably.
func (r *AdminRepository) GetByIdentifier(ctx context.Context, identifier string) (types.Admin, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE username = $1 OR email = $1`
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin types.Admin) (types.Admin, error) {
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const query = `
		INSERT INTO admins (username, email, full_name, role, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		admin.Username,
		admin.Email,
		admin.FullName,
		admin.Role,
		admin.IsActive,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	).Scan(&admin.ID); err != nil {
		return types.Admin{}, err
	}
	return admin, nil
}

// UpdateLastLogin stamps the account's last successful login. Callers
// treat failures as non-fatal: a lost timestamp must never fail a login.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	const query = `UPDATE admins SET last_login = $1, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the account's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
