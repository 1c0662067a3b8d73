package model

import (
	"strings"
	"time"
)

// ResetAttempt represents one in-flight password reset request for an email address.
type ResetAttempt struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the attempt is expired at now. An attempt is still
// valid at exactly ExpiresAt.
func (a *ResetAttempt) ExpiredAt(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Same reports whether a and b describe the same stored attempt.
func (a *ResetAttempt) Same(b *ResetAttempt) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Email == b.Email && a.Code == b.Code && a.ExpiresAt.Equal(b.ExpiresAt)
}

// NormalizeEmail returns the case-insensitive key used for email addresses.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
