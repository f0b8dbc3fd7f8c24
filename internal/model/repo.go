package model

import "time"

// Repository is a hosted repository record.
//
// Pinned marks membership in the distinguished "reconnaissance library"
// surfaced on the dashboard. It is an explicit stored flag — classification
// is never inferred from the shape of the ID.
//
// Owner is the username of the creator, or "anonymous" when a repository is
// created without a session. It is informational: owners are not required to
// reference a registered user, and deleting a user leaves their repositories
// in place.
type Repository struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	IsPrivate   bool      `json:"isPrivate"`
	Pinned      bool      `json:"pinned"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AnonymousOwner is the sentinel owner for repositories created without a
// logged-in session.
const AnonymousOwner = "anonymous"
