// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"blogdesk/internal/assets"
	"blogdesk/internal/store"
)

// Content groups the category, subcategory and article handlers. Writes
// are token protected by the router; reads are public.
type Content struct {
	categories    *store.CategoryStore
	subcategories *store.SubCategoryStore
	articles      *store.ArticleStore
	thumbnails    *store.ThumbnailStore
	assets        *assets.Manager
	cache         ResponseCache
	publicBaseURL string
}

// NewContent creates a new Content handler group. rc may be nil.
func NewContent(
	categories *store.CategoryStore,
	subcategories *store.SubCategoryStore,
	articles *store.ArticleStore,
	thumbnails *store.ThumbnailStore,
	am *assets.Manager,
	rc ResponseCache,
	publicBaseURL string,
) *Content {
	return &Content{
		categories:    categories,
		subcategories: subcategories,
		articles:      articles,
		thumbnails:    thumbnails,
		assets:        am,
		cache:         rc,
		publicBaseURL: publicBaseURL,
	}
}

// invalidate drops every cached listing after a successful write.
func (c *Content) invalidate(ctx context.Context) {
	if c.cache != nil {
		c.cache.InvalidateAll(ctx)
	}
}

// storeThumbnail saves the uploaded thumbnail, if any and acceptable.
func (c *Content) storeThumbnail(ctx context.Context, in *formInput) (*string, error) {
	if in.thumbnail == nil {
		return nil, nil
	}
	return c.assets.AcceptFile(ctx, in.thumbnail)
}

// release removes the file behind url once no row references it anymore.
// When the reference check fails the file is kept.
func (c *Content) release(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	inUse, err := c.thumbnails.InUse(ctx, *url)
	if err != nil {
		slog.Warn("thumbnail reference check failed, keeping file", "url", *url, "error", err)
		return
	}
	if inUse {
		slog.Debug("thumbnail still referenced, keeping file", "url", *url)
		return
	}
	c.assets.Reclaim(ctx, url)
}

// replaced reports whether an update swapped prev for a different file.
func replaced(prev, next *string) bool {
	return prev != nil && next != nil && *prev != *next
}

// categoryRef reads the category_id field. It writes a 400 and returns
// false when the value is not an integer.
func categoryRef(w http.ResponseWriter, r *http.Request, in *formInput) (*int64, bool) {
	id, err := in.int64("category_id")
	if errors.Is(err, errInvalidInteger) {
		writeMessage(w, r, http.StatusBadRequest, "category_id must be an integer")
		return nil, false
	}
	return id, true
}

// categoryExists answers 404 Category not found and returns false when id
// does not name a category.
func (c *Content) categoryExists(w http.ResponseWriter, r *http.Request, id int64) bool {
	cat, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		internalError(w, r, "category lookup failed", err)
		return false
	}
	if cat == nil {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return false
	}
	return true
}
