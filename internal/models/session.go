package models

import "time"

// IdentityClaims is the decoded identity carried by a verified JWT.
// It lives for the duration of one request and is never persisted.
type IdentityClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UserSession is a server-side session record. SessionID is opaque and
// unguessable, and is distinct from the JWT it was created from. Outside the
// dev stage the SessionID is stripped from response bodies and travels only
// via cookie.
type UserSession struct {
	SessionID string    `json:"sessionId,omitempty" badgerhold:"key"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *UserSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
