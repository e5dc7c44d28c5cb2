package model

import "time"

// Session is the single authoritative login of a user.
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// SessionMeta carries client details captured at login.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// TokenClaims is the identity carried by an access token.
type TokenClaims struct {
	UserID    int64
	SessionID string
	Role      Role
}
