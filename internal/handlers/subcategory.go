package handlers

import (
	"errors"
	"net/http"

	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

// ListSubCategories returns subcategories with their category title,
// optionally filtered by ?search= on the title.
func (c *Content) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	serveCached(w, r, c.cache, func() (any, error) {
		return c.subcategories.List(r.Context(), search)
	})
}

// GetSubCategory returns one subcategory.
func (c *Content) GetSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}
	sc, err := c.subcategories.FindByID(r.Context(), id)
	if err != nil {
		internalError(w, r, "find subcategory failed", err)
		return
	}
	if sc == nil {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}
	writeJSON(w, r, http.StatusOK, sc)
}

// CreateSubCategory creates a subcategory under an existing category.
func (c *Content) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	in, err := readForm(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !in.has("title", "slug", "category_id") {
		writeMessage(w, r, http.StatusBadRequest, "Title, slug, and category_id are required")
		return
	}
	categoryID, ok := categoryRef(w, r, in)
	if !ok {
		return
	}
	title, slug := in.str("title"), in.str("slug")
	if msg := validateLengths(title, slug); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}
	if !c.categoryExists(w, r, *categoryID) {
		return
	}

	ctx := r.Context()
	thumb, err := c.storeThumbnail(ctx, in)
	if err != nil {
		internalError(w, r, "store subcategory thumbnail failed", err)
		return
	}

	sc := &models.SubCategory{Title: *title, Slug: *slug, Thumbnail: thumb, CategoryID: *categoryID}
	if err := c.subcategories.Create(ctx, sc); err != nil {
		c.release(ctx, thumb)
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeMessage(w, r, http.StatusNotFound, "Category not found")
			return
		}
		internalError(w, r, "create subcategory failed", err)
		return
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"message":   "Subcategory created",
		"id":        sc.ID,
		"thumbnail": sc.Thumbnail,
	})
}

// UpdateSubCategory applies the supplied non-blank fields. A changed
// category_id must name an existing category.
func (c *Content) UpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}
	in, err := readForm(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	categoryID, ok := categoryRef(w, r, in)
	if !ok {
		return
	}
	patch := models.SubCategoryPatch{
		Title:      in.str("title"),
		Slug:       in.str("slug"),
		CategoryID: categoryID,
	}
	if msg := validateLengths(patch.Title, patch.Slug); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	existing, err := c.subcategories.FindByID(ctx, id)
	if err != nil {
		internalError(w, r, "find subcategory failed", err)
		return
	}
	if existing == nil {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}
	if categoryID != nil && *categoryID != existing.CategoryID && !c.categoryExists(w, r, *categoryID) {
		return
	}

	if patch.Thumbnail, err = c.storeThumbnail(ctx, in); err != nil {
		internalError(w, r, "store subcategory thumbnail failed", err)
		return
	}

	sc, prev, err := c.subcategories.Update(ctx, id, patch)
	if err != nil || sc == nil {
		c.release(ctx, patch.Thumbnail)
		switch {
		case errors.Is(err, store.ErrCategoryNotFound):
			writeMessage(w, r, http.StatusNotFound, "Category not found")
		case err != nil:
			internalError(w, r, "update subcategory failed", err)
		default:
			writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		}
		return
	}
	if replaced(prev, sc.Thumbnail) {
		c.release(ctx, prev)
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":   "Subcategory updated successfully",
		"thumbnail": sc.Thumbnail,
	})
}

// DeleteSubCategory removes a subcategory and its thumbnail.
func (c *Content) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}

	ctx := r.Context()
	sc, err := c.subcategories.Delete(ctx, id)
	if err != nil {
		internalError(w, r, "delete subcategory failed", err)
		return
	}
	if sc == nil {
		writeMessage(w, r, http.StatusNotFound, "Subcategory not found")
		return
	}
	c.release(ctx, sc.Thumbnail)
	c.invalidate(ctx)

	writeMessage(w, r, http.StatusOK, "Subcategory deleted successfully")
}
