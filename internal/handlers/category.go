package handlers

import (
	"errors"
	"net/http"

	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

// ListCategories returns every category ordered by id.
func (c *Content) ListCategories(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, c.cache, func() (any, error) {
		return c.categories.List(r.Context())
	})
}

// GetCategory returns one category.
func (c *Content) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}
	cat, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		internalError(w, r, "find category failed", err)
		return
	}
	if cat == nil {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, r, http.StatusOK, cat)
}

// CreateCategory creates a category from title, slug and an optional
// thumbnail upload.
func (c *Content) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := readForm(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !in.has("title", "slug") {
		writeMessage(w, r, http.StatusBadRequest, "Title and slug are required")
		return
	}
	title, slug := in.str("title"), in.str("slug")
	if msg := validateLengths(title, slug); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	thumb, err := c.storeThumbnail(ctx, in)
	if err != nil {
		internalError(w, r, "store category thumbnail failed", err)
		return
	}

	cat := &models.Category{Title: *title, Slug: *slug, Thumbnail: thumb}
	if err := c.categories.Create(ctx, cat); err != nil {
		c.release(ctx, thumb)
		internalError(w, r, "create category failed", err)
		return
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"message":   "Category created",
		"id":        cat.ID,
		"thumbnail": cat.Thumbnail,
	})
}

// UpdateCategory applies the supplied non-blank fields to a category.
func (c *Content) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}
	in, err := readForm(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := models.CategoryPatch{Title: in.str("title"), Slug: in.str("slug")}
	if msg := validateLengths(patch.Title, patch.Slug); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	existing, err := c.categories.FindByID(ctx, id)
	if err != nil {
		internalError(w, r, "find category failed", err)
		return
	}
	if existing == nil {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}

	if patch.Thumbnail, err = c.storeThumbnail(ctx, in); err != nil {
		internalError(w, r, "store category thumbnail failed", err)
		return
	}

	cat, prev, err := c.categories.Update(ctx, id, patch)
	if err != nil || cat == nil {
		c.release(ctx, patch.Thumbnail)
		if err != nil {
			internalError(w, r, "update category failed", err)
		} else {
			writeMessage(w, r, http.StatusNotFound, "Category not found")
		}
		return
	}
	if replaced(prev, cat.Thumbnail) {
		c.release(ctx, prev)
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":   "Category updated successfully",
		"thumbnail": cat.Thumbnail,
	})
}

// DeleteCategory removes a category that has no subcategories or
// articles, and its thumbnail.
func (c *Content) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}

	ctx := r.Context()
	cat, err := c.categories.Delete(ctx, id)
	if errors.Is(err, store.ErrCategoryInUse) {
		writeMessage(w, r, http.StatusConflict, "Category has subcategories or articles")
		return
	}
	if err != nil {
		internalError(w, r, "delete category failed", err)
		return
	}
	if cat == nil {
		writeMessage(w, r, http.StatusNotFound, "Category not found")
		return
	}
	c.release(ctx, cat.Thumbnail)
	c.invalidate(ctx)

	writeMessage(w, r, http.StatusOK, "Category deleted successfully")
}
