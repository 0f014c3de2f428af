package handlers

import (
	"fmt"
	"unicode/utf8"

	"blogdesk/internal/models"
)

// Validation limits for hierarchy fields. Bodies are unbounded.
const (
	maxTitleLen = 300
	maxSlugLen  = 300
)

// validateLengths checks the optional title and slug of a create or
// update and returns the first error found.
func validateLengths(title, slug *string) string {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return "Title is too long (max 300 characters)"
	}
	if slug != nil && utf8.RuneCountInString(*slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)"
	}
	return ""
}

// validateCredentials checks a registration payload. bcrypt only hashes
// the first 72 bytes of a password and refuses longer ones.
func validateCredentials(username, password string) string {
	if username == "" || password == "" {
		return "Username and password are required"
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLen {
		return fmt.Sprintf("Username is too long (max %d characters)", models.MaxUsernameLen)
	}
	if len(password) > 72 {
		return "Password is too long (max 72 bytes)"
	}
	return ""
}
