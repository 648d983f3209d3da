package domain

import "time"

// RefreshToken is the persisted long-lived credential exchanged for new
// access tokens. At most one active record exists per user.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is expired at the given instant.
// A token whose expiry equals now exactly is expired.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Principal represents the resolved authenticated identity attached to a
// request after the bearer token has been validated.
type Principal struct {
	UserID   string
	Username string
	Roles    []string
}

// HasRole reports whether the principal carries the named role.
func (p *Principal) HasRole(name string) bool {
	for _, role := range p.Roles {
		if role == name {
			return true
		}
	}
	return false
}
