package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

// Pagination bounds for the article listing.
const (
	defaultPerPage = 10
	maxPerPage     = 100
	latestCount    = 3
	qrSize         = 256
)

// queryInt returns the integer query parameter key, or def when it is
// missing or malformed.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

// ListArticles returns one page of articles, optionally filtered by
// ?search= on the title.
func (c *Content) ListArticles(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", defaultPerPage)
	switch {
	case perPage < 1:
		perPage = defaultPerPage
	case perPage > maxPerPage:
		perPage = maxPerPage
	}
	search := r.URL.Query().Get("search")

	serveCached(w, r, c.cache, func() (any, error) {
		return c.articles.Page(r.Context(), search, page, perPage)
	})
}

// LatestArticles returns the three newest articles with shortened bodies.
func (c *Content) LatestArticles(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, c.cache, func() (any, error) {
		items, err := c.articles.Latest(r.Context(), latestCount)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i] = items[i].Preview(models.PreviewLength)
		}
		return map[string][]models.Article{"articles": items}, nil
	})
}

// lookupArticle resolves {key} as a slug, falling back to a numeric id.
func (c *Content) lookupArticle(r *http.Request) (*models.Article, error) {
	key := chi.URLParam(r, "key")
	a, err := c.articles.FindBySlug(r.Context(), key)
	if err != nil || a != nil {
		return a, err
	}
	if id, ok := pathID(r, "key"); ok {
		return c.articles.FindByID(r.Context(), id)
	}
	return nil, nil
}

// GetArticle returns one article by slug or id.
func (c *Content) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := c.lookupArticle(r)
	if err != nil {
		internalError(w, r, "find article failed", err)
		return
	}
	if a == nil {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

// ArticleQR returns a PNG QR code linking to the article's public page.
func (c *Content) ArticleQR(w http.ResponseWriter, r *http.Request) {
	a, err := c.articles.FindBySlug(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		internalError(w, r, "find article failed", err)
		return
	}
	if a == nil {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
		return
	}

	link := strings.TrimRight(c.publicBaseURL, "/") + "/articles/" + url.PathEscape(a.Slug)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		internalError(w, r, "encode qr code failed", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

// CreateArticle creates an article under an existing category.
func (c *Content) CreateArticle(w http.ResponseWriter, r *http.Request) {
	in, err := readForm(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !in.has("title", "slug", "body", "category_id") {
		writeMessage(w, r, http.StatusBadRequest, "Title, slug, body, and category are required")
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
		internalError(w, r, "store article thumbnail failed", err)
		return
	}

	a := &models.Article{
		Title:      *title,
		Slug:       *slug,
		Body:       *in.str("body"),
		Thumbnail:  thumb,
		CategoryID: *categoryID,
	}
	if err := c.articles.Create(ctx, a); err != nil {
		c.release(ctx, thumb)
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeMessage(w, r, http.StatusNotFound, "Category not found")
			return
		}
		internalError(w, r, "create article failed", err)
		return
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"message":   "Article created successfully",
		"id":        a.ID,
		"thumbnail": a.Thumbnail,
	})
}

// UpdateArticle applies the supplied non-blank fields. A changed
// category_id must name an existing category.
func (c *Content) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "key")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
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
	patch := models.ArticlePatch{
		Title:      in.str("title"),
		Slug:       in.str("slug"),
		Body:       in.str("body"),
		CategoryID: categoryID,
	}
	if msg := validateLengths(patch.Title, patch.Slug); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	existing, err := c.articles.FindByID(ctx, id)
	if err != nil {
		internalError(w, r, "find article failed", err)
		return
	}
	if existing == nil {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
		return
	}
	if categoryID != nil && *categoryID != existing.CategoryID && !c.categoryExists(w, r, *categoryID) {
		return
	}

	if patch.Thumbnail, err = c.storeThumbnail(ctx, in); err != nil {
		internalError(w, r, "store article thumbnail failed", err)
		return
	}

	a, prev, err := c.articles.Update(ctx, id, patch)
	if err != nil || a == nil {
		c.release(ctx, patch.Thumbnail)
		switch {
		case errors.Is(err, store.ErrCategoryNotFound):
			writeMessage(w, r, http.StatusNotFound, "Category not found")
		case err != nil:
			internalError(w, r, "update article failed", err)
		default:
			writeMessage(w, r, http.StatusNotFound, "Article not found")
		}
		return
	}
	if replaced(prev, a.Thumbnail) {
		c.release(ctx, prev)
	}
	c.invalidate(ctx)

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":   "Article updated successfully",
		"thumbnail": a.Thumbnail,
	})
}

// DeleteArticle removes an article and its thumbnail.
func (c *Content) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "key")
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
		return
	}

	ctx := r.Context()
	a, err := c.articles.Delete(ctx, id)
	if err != nil {
		internalError(w, r, "delete article failed", err)
		return
	}
	if a == nil {
		writeMessage(w, r, http.StatusNotFound, "Article not found")
		return
	}
	c.release(ctx, a.Thumbnail)
	c.invalidate(ctx)

	writeMessage(w, r, http.StatusOK, "Article deleted successfully")
}
