package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogdesk/internal/models"
)

// StatsStore answers the dashboard's aggregate queries.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore returns a new StatsStore.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// Counts returns the number of categories, subcategories and articles.
func (s *StatsStore) Counts(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	targets := []struct {
		table string
		dest  *int
	}{
		{"categories", &st.Categories},
		{"subcategories", &st.SubCategories},
		{"articles", &st.Articles},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table).Scan(t.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return &st, nil
}
