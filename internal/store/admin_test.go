package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/meridiancap/cms-apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminRows = []string{"id", "username", "email", "full_name", "role", "is_active", "password_hash", "last_login", "created_at", "updated_at"}

func newAdminRepo(t *testing.T) (*AdminRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAdminRepository(db), mock
}

func TestAdminRepositoryGetByIdentifier(t *testing.T) {
	repo, mock := newAdminRepo(t)
	now := time.Now()

	query := "SELECT id, username, email, full_name, role, is_active, password_hash, last_login, created_at, updated_at " +
		"FROM admins WHERE username = $1 OR email = $1"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(adminRows).
			AddRow(2, "dana", "dana@example.com", "Dana Reyes", "admin", true, "$2a$10$hash", nil, now, now))

	admin, err := repo.GetByIdentifier(context.Background(), "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, admin.ID)
	assert.Equal(t, "dana", admin.Username)
	assert.Nil(t, admin.LastLogin, "NULL last_login should stay nil")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryGetByIdentifierNotFound(t *testing.T) {
	repo, mock := newAdminRepo(t)

	query := "SELECT id, username, email, full_name, role, is_active, password_hash, last_login, created_at, updated_at " +
		"FROM admins WHERE username = $1 OR email = $1"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(adminRows))

	_, err := repo.GetByIdentifier(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryCreate(t *testing.T) {
	repo, mock := newAdminRepo(t)

	query := "INSERT INTO admins (username, email, full_name, role, is_active, password_hash, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("dana", "dana@example.com", "Dana Reyes", "admin", true, "$2a$10$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	admin, err := repo.Create(context.Background(), types.Admin{
		Username:     "dana",
		Email:        "dana@example.com",
		FullName:     "Dana Reyes",
		Role:         "admin",
		IsActive:     true,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, admin.ID)
	assert.False(t, admin.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryUpdateLastLogin(t *testing.T) {
	repo, mock := newAdminRepo(t)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET last_login = $1, updated_at = $1 WHERE id = $2")).
		WithArgs(at, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateLastLogin(context.Background(), 5, at))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET last_login = $1, updated_at = $1 WHERE id = $2")).
		WithArgs(at, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateLastLogin(context.Background(), 99, at), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryUpdatePassword(t *testing.T) {
	repo, mock := newAdminRepo(t)

	query := "UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3"
	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("$2a$10$newhash", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePassword(context.Background(), 5, "$2a$10$newhash"))

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("$2a$10$newhash", sqlmock.AnyArg(), 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 99, "$2a$10$newhash"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
