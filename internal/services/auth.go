package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/meridiancap/cms-apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// Authentication failure modes. Handlers map all of them to 401; the
// distinction matters for logging and for tests.
var (
	// ErrInvalidCredentials is returned when the identifier is unknown,
	// the account is inactive, or the password does not match. Callers
	// deliberately cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownToken is returned when no session exists for a token.
	ErrUnknownToken = errors.New("unknown session token")

	// ErrExpiredSession is returned when the session's absolute expiry
	// has passed.
	ErrExpiredSession = errors.New("session expired")

	// ErrInactivePrincipal is returned when the session is valid but the
	// bound account has since been deactivated.
	ErrInactivePrincipal = errors.New("account is inactive")
)

// sessionTokenBytes is the entropy of an issued token: 32 bytes = 256
// bits, hex-encoded on the wire.
const sessionTokenBytes = 32

// AdminRepository defines persistence operations for admin accounts.
type AdminRepository interface {
	GetByID(ctx context.Context, id int) (types.Admin, error)
	GetByIdentifier(ctx context.Context, identifier string) (types.Admin, error)
	Create(ctx context.Context, admin types.Admin) (types.Admin, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) error
	Get(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuthService issues, validates, and revokes admin sessions. It is the
// gate in front of every admin operation: handlers must call Validate
// before touching any repository.
type AuthService struct {
	admins   AdminRepository
	sessions SessionRepository
	log      *logger.Logger
	ttl      time.Duration

	// now is replaceable in tests to simulate clock advance.
	now func() time.Time
}

func NewAuthService(admins AdminRepository, sessions SessionRepository, log *logger.Logger, ttl time.Duration) *AuthService {
	return &AuthService{
		admins:   admins,
		sessions: sessions,
		log:      log,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login verifies the identifier/password pair and, on success, issues a
// new session with a fixed absolute lifetime. The identifier is checked
// against both username and email. The last-login stamp is best-effort:
// its failure is logged and never fails the login.
func (s *AuthService) Login(ctx context.Context, identifier, password, clientIP, clientAgent string) (string, types.Admin, error) {
	admin, err := s.admins.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.Admin{}, ErrInvalidCredentials
		}
		return "", types.Admin{}, err
	}
	if !admin.IsActive {
		return "", types.Admin{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", types.Admin{}, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return "", types.Admin{}, err
	}

	now := s.now()
	session := types.Session{
		Token:       token,
		AdminID:     admin.ID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
		ClientIP:    clientIP,
		ClientAgent: clientAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", types.Admin{}, err
	}

	if err := s.admins.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn().Err(err).Int("admin_id", admin.ID).Msg("failed to record last login")
	}
	admin.LastLogin = &now

	return token, admin, nil
}

// Validate resolves a token to the admin account it is bound to. Expiry
// is checked lazily here; the account's is_active flag is re-checked on
// every call so deactivation takes effect immediately.
func (s *AuthService) Validate(ctx context.Context, token string) (types.Admin, error) {
	if token == "" {
		return types.Admin{}, ErrUnknownToken
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Admin{}, ErrUnknownToken
		}
		return types.Admin{}, err
	}

	if session.Expired(s.now()) {
		return types.Admin{}, ErrExpiredSession
	}

	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Admin{}, ErrUnknownToken
		}
		return types.Admin{}, err
	}
	if !admin.IsActive {
		return types.Admin{}, ErrInactivePrincipal
	}

	return admin, nil
}

// Logout revokes a session. Revoking a token that does not exist is not
// an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// CleanupExpired removes sessions past their expiry and returns the
// number of rows swept.
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// CreateAdmin hashes the password and persists a new active account.
// Used by the CLI seed command.
func (s *AuthService) CreateAdmin(ctx context.Context, username, email, fullName, role, password string) (types.Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.Admin{}, err
	}
	return s.admins.Create(ctx, types.Admin{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		PasswordHash: string(hashed),
	})
}

// SetPassword replaces the password of the account matching the
// identifier (username or email). Existing sessions stay valid; only
// future logins check the new hash.
func (s *AuthService) SetPassword(ctx context.Context, identifier, password string) error {
	admin, err := s.admins.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(ctx, admin.ID, string(hashed))
}

func newSessionToken() (string, error) {
	var buf [sessionTokenBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
