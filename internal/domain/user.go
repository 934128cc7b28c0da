package domain

import (
	"strings"
	"time"
)

// User is an account that owns projects, quotes and calendar events.
type User struct {
	ID                uint
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	PrimaryAreaOfWork WorkArea
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lowercases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordResetToken is a single-use credential for resetting a password.
type PasswordResetToken struct {
	ID        uint
	Token     string
	UserID    uint
	ExpiresAt time.Time
}

// Expired reports whether the token can no longer be redeemed at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
