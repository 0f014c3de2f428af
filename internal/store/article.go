package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogdesk/internal/models"
)

// ArticleStore manages articles in the database.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore returns a new ArticleStore.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleSelect = `
	SELECT a.id, a.title, a.slug, a.body, a.thumbnail, a.category_id, c.title
	FROM articles a
	JOIN categories c ON c.id = a.category_id`

func scanArticle(row scanner) (*models.Article, error) {
	var a models.Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Body, &a.Thumbnail, &a.CategoryID, &a.CategoryTitle)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *ArticleStore) query(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Page returns one page of articles in creation order, optionally
// filtered by a case-insensitive title substring. page and perPage must
// be positive; a page past the end yields an empty list.
func (s *ArticleStore) Page(ctx context.Context, search string, page, perPage int) (*models.ArticlePage, error) {
	where := ""
	var args []any
	if search != "" {
		where = ` WHERE LOWER(a.title) LIKE $1 ESCAPE '\'`
		args = append(args, likePattern(search))
	}

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles a`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	result := &models.ArticlePage{
		Articles:    []models.Article{},
		TotalPages:  (total + perPage - 1) / perPage,
		CurrentPage: page,
	}
	// Past the last page there is nothing to fetch, and the offset of a
	// huge page number would overflow.
	if page > result.TotalPages {
		return result, nil
	}

	n := len(args)
	query := articleSelect + where + fmt.Sprintf(` ORDER BY a.id LIMIT $%d OFFSET $%d`, n+1, n+2)
	items, err := s.query(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	result.Articles = items
	return result, nil
}

// Latest returns the n most recently created articles, newest first.
func (s *ArticleStore) Latest(ctx context.Context, n int) ([]models.Article, error) {
	items, err := s.query(ctx, articleSelect+` ORDER BY a.id DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("latest articles: %w", err)
	}
	return items, nil
}

// FindBySlug retrieves the oldest article with the given slug. Returns nil
// if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, articleSelect+` WHERE a.slug = $1 ORDER BY a.id LIMIT 1`, slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	return findArticle(ctx, s.db, id)
}

func findArticle(ctx context.Context, q querier, id int64) (*models.Article, error) {
	a, err := scanArticle(q.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// Create inserts a new article and sets its ID and CategoryTitle.
// Returns ErrCategoryNotFound when the category does not exist.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		title, err := categoryTitle(ctx, tx, a.CategoryID)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO articles (title, slug, body, thumbnail, category_id)
			VALUES ($1, $2, $3, $4, $5) RETURNING id
		`, a.Title, a.Slug, a.Body, a.Thumbnail, a.CategoryID).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		a.CategoryTitle = title
		return nil
	})
}

// Update applies patch inside one transaction and returns the updated row
// plus the thumbnail URL held before. A nil row means the ID does not exist.
func (s *ArticleStore) Update(ctx context.Context, id int64, patch models.ArticlePatch) (*models.Article, *string, error) {
	var (
		a    *models.Article
		prev *string
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		a, err = findArticle(ctx, tx, id)
		if err != nil || a == nil {
			return err
		}
		prev = a.Thumbnail

		if patch.CategoryID != nil && *patch.CategoryID != a.CategoryID {
			if a.CategoryTitle, err = categoryTitle(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
		}
		patch.Apply(a)

		_, err = tx.ExecContext(ctx, `
			UPDATE articles SET title = $1, slug = $2, body = $3, thumbnail = $4, category_id = $5
			WHERE id = $6
		`, a.Title, a.Slug, a.Body, a.Thumbnail, a.CategoryID, a.ID)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return a, prev, nil
}

// Delete removes the article and returns the deleted row. Returns nil when
// the ID does not exist.
func (s *ArticleStore) Delete(ctx context.Context, id int64) (*models.Article, error) {
	var a *models.Article
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		a, err = findArticle(ctx, tx, id)
		if err != nil || a == nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
