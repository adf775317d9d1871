package types

import "time"

// Admin represents an administrator account in the system.
// It contains identity, role, and audit metadata.
type Admin struct {
	// ID is the unique identifier of the admin account.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen for the account.
	// It is accepted interchangeably with Email at login.
	Username string `json:"username" db:"username"`

	// Email is the account's email address. Unique across all accounts,
	// active or not, and accepted interchangeably with Username at login.
	Email string `json:"email" db:"email"`

	// FullName is the administrator's display name.
	FullName string `json:"full_name" db:"full_name"`

	// Role indicates the account's authorization level (e.g. "admin",
	// "editor"). Currently informational; every account with a valid
	// session may manage all content.
	Role string `json:"role" db:"role"`

	// IsActive controls whether the account may log in and whether
	// existing sessions bound to it remain valid.
	IsActive bool `json:"is_active" db:"is_active"`

	// PasswordHash stores the bcrypt hash of the account's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// LastLogin is the timestamp of the most recent successful login,
	// or nil if the account has never logged in.
	LastLogin *time.Time `json:"last_login" db:"last_login"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
