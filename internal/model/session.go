package model

import "time"

// SessionStatus is the lifecycle state of a session cookie record.
type SessionStatus string

const (
	SessionActive  SessionStatus = "ACTIVE"
	SessionExpired SessionStatus = "EXPIRED"
)

// SessionCookie is an application-level record of a login event, not a
// browser HTTP cookie. One is created on every successful login or signup.
//
// Invariant: at most one cookie per email is ACTIVE at a time. Recording a
// new cookie expires all prior ACTIVE cookies for that email; logging out
// expires the current one.
type SessionCookie struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	Username   string        `json:"username"`
	UserAgent  string        `json:"userAgent"`
	Status     SessionStatus `json:"status"`
	AvatarURL  string        `json:"avatarUrl"`
	RepoCount  int           `json:"repoCount"`
	LastActive time.Time     `json:"lastActive"`
	CreatedAt  time.Time     `json:"createdAt"`
}
