package model

import "time"

// User is an account holder. The password is stored as a bcrypt hash.
type User struct {
	CreatedAt    time.Time
	ID           string
	Email        string
	PasswordHash string
}

// Session is an authenticated login with a fixed expiry.
type Session struct {
	ExpiresAt time.Time
	CreatedAt time.Time
	Token     string
	UserID    string
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
