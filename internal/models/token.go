package models

import "time"

// ApiToken is a bearer credential. The raw token is never stored; only
// its hex-encoded HMAC-SHA256 hash under the process-wide signing secret.
type ApiToken struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Valid reports whether the token has not been revoked.
func (t *ApiToken) Valid() bool {
	return t.RevokedAt == nil
}
