package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"blogdesk/internal/models"
)

// AdminStore handles all admin-related database operations.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// dummyHash is compared against when a username is unknown so a failed
// login costs the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("blogdesk-timing-guard"), bcrypt.DefaultCost)
	return h
})

// FindByUsername retrieves an admin by username. Returns nil if not found.
func (s *AdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	a := &models.Admin{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash FROM admins WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return a, nil
}

// Create inserts a new admin with a bcrypt-hashed password. Returns
// ErrDuplicateUsername when the username is taken, including when a
// concurrent insert wins the race for the unique index.
func (s *AdminStore) Create(ctx context.Context, username, password string) (*models.Admin, error) {
	existing, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Admin{Username: username, PasswordHash: string(hash)}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING id
	`, username, a.PasswordHash).Scan(&a.ID)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// CheckPassword verifies a plaintext password against the admin's stored hash.
func (s *AdminStore) CheckPassword(admin *models.Admin, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil
}

// Authenticate returns the admin when username and password match, and
// nil otherwise. Unknown usernames still pay for a bcrypt comparison.
func (s *AdminStore) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	a, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a == nil {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, nil
	}
	if !s.CheckPassword(a, password) {
		return nil, nil
	}
	return a, nil
}

// Count returns the number of registered admins.
func (s *AdminStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
