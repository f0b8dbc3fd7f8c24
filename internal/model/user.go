// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account together with its public profile.
//
// The administrator identity is NOT stored as a User row — it is synthesized
// from configuration at login time. Every row in the users table therefore
// represents a self-registered account.
//
// PasswordHash holds a bcrypt hash, never the plaintext. The json:"-" tag
// keeps it out of every API response, so profiles returned by login and
// lookup are always "password stripped".
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	Location     string    `json:"location"`
	Website      string    `json:"website"`
	AvatarURL    string    `json:"avatarUrl"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
