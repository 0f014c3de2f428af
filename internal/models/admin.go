// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

// MaxUsernameLen is the longest username accepted, in characters. The
// PostgreSQL schema sizes admins.username to match.
const MaxUsernameLen = 150

// Admin is a back-office account allowed to manage content. Admins are
// created at registration and never modified through the API.
type Admin struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Never serialize the hash
}
