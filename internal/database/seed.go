package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the bootstrap administrator when the admins table is
// empty. It is a no-op when either credential is blank or an admin already
// exists, so it is safe to call on every start-up.
func SeedAdmin(db *sql.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return fmt.Errorf("seed check admins: %w", err)
	}

	if count > 0 {
		slog.Debug("admins present, skipping bootstrap admin")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(
		"INSERT INTO admins (username, password_hash) VALUES ($1, $2)",
		username, string(hash),
	)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("bootstrap admin created", "username", username)
	return nil
}
