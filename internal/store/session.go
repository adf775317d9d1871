package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/meridiancap/cms-apiserver/types"
)

// SessionRepository handles persistence for admin sessions. A session row
// is immutable once written; the only mutation is deletion.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session types.Session) error {
	const query = `
		INSERT INTO sessions (token, admin_id, issued_at, expires_at, client_ip, client_agent)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		session.Token,
		session.AdminID,
		session.IssuedAt,
		session.ExpiresAt,
		session.ClientIP,
		session.ClientAgent,
	)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT token, admin_id, issued_at, expires_at, client_ip, client_agent
		FROM sessions
		WHERE token = $1`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.AdminID,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.ClientIP,
		&session.ClientAgent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}

// Delete removes a session row. Deleting a token that does not exist is
// not an error: revocation is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

// DeleteExpired sweeps sessions whose absolute expiry has passed and
// returns the number of rows removed. Expiry remains checked lazily at
// validation time; the sweep only bounds table growth.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < now()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
