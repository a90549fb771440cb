package domain

import "time"

// Role is the platform role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity returned by the login endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Session is the signed-in identity plus its bearer credential.
type Session struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	SignedIn  time.Time `json:"signed_in"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the session's credential has expired at now.
// A zero ExpiresAt means the expiry is unknown and the session is kept.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
