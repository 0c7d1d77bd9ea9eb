// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// ID is the only externally visible identifier (an opaque xid string); the
// database rowid never leaves the repository layer. The password hash is
// deliberately not a field here — it travels exclusively through dedicated
// repository methods, so no handler or JSON encoder can ever read or assign
// it through the model.
//
// All timestamps are UTC. LastLogin is nil until the first successful
// authentication.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"` // optional; empty means unset
	IsAdmin   bool       `json:"isAdmin"`
	GitHubID  int64      `json:"-"` // non-zero only for OAuth-linked accounts
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}
