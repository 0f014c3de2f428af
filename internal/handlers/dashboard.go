package handlers

import (
	"net/http"

	"blogdesk/internal/store"
)

// Dashboard serves the admin overview counts.
type Dashboard struct {
	stats *store.StatsStore
}

// NewDashboard creates a new Dashboard handler.
func NewDashboard(stats *store.StatsStore) *Dashboard {
	return &Dashboard{stats: stats}
}

// Stats returns the number of categories, subcategories and articles.
func (d *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := d.stats.Counts(r.Context())
	if err != nil {
		internalError(w, r, "dashboard counts failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, counts)
}
