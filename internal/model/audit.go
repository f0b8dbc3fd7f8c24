package model

import "time"

// LogType classifies audit log entries.
type LogType string

const (
	LogSignup   LogType = "SIGNUP"
	LogSecurity LogType = "SECURITY"
	LogSystem   LogType = "SYSTEM"
)

// AuditLog is one append-only entry in the identity-event log.
//
// Entries record who triggered the event (email, username) and a
// human-readable message. Credentials are never written here: the log stores
// no password field at all, and callers must not smuggle secrets into
// Message.
type AuditLog struct {
	ID        string    `json:"id"`
	Type      LogType   `json:"type"`
	Message   string    `json:"message"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
