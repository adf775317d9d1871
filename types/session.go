package types

import "time"

// Session is a time-bounded, revocable proof of authentication bound to
// an admin account. The token is an opaque 256-bit value generated from
// a cryptographically secure source; possession of the token is the sole
// proof of identity for admin endpoints.
//
// A session is immutable once issued: it is either present and unexpired,
// present and expired, or deleted. Expiry is absolute (a fixed offset from
// issuance), never sliding.
type Session struct {
	// Token is the opaque session identifier, hex-encoded.
	// Never exposed in API responses other than the login response.
	Token string `json:"-" db:"token"`

	// AdminID identifies the admin account this session is bound to.
	AdminID int `json:"admin_id" db:"admin_id"`

	// IssuedAt is the timestamp at which the session was created.
	IssuedAt time.Time `json:"issued_at" db:"issued_at"`

	// ExpiresAt is the absolute timestamp after which the session is
	// invalid. Expiry is checked lazily at validation time.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// ClientIP records the remote address observed at login.
	ClientIP string `json:"client_ip" db:"client_ip"`

	// ClientAgent records the User-Agent header observed at login.
	ClientAgent string `json:"client_agent" db:"client_agent"`
}

// Expired reports whether the session's absolute expiry has passed
// relative to now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
