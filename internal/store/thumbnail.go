package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ThumbnailStore answers questions about thumbnail URLs across every
// table that holds one. Uploads that sanitize to the same file name share
// one stored file, so a file may back several rows.
type ThumbnailStore struct {
	db *sql.DB
}

// NewThumbnailStore returns a new ThumbnailStore.
func NewThumbnailStore(db *sql.DB) *ThumbnailStore {
	return &ThumbnailStore{db: db}
}

// InUse reports whether any category, subcategory or article references url.
func (s *ThumbnailStore) InUse(ctx context.Context, url string) (bool, error) {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM categories WHERE thumbnail = $1)
		     + (SELECT COUNT(*) FROM subcategories WHERE thumbnail = $1)
		     + (SELECT COUNT(*) FROM articles WHERE thumbnail = $1)
	`, url).Scan(&refs)
	if err != nil {
		return false, fmt.Errorf("count thumbnail references: %w", err)
	}
	return refs > 0, nil
}
