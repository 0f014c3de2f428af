// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogdesk/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, slug, thumbnail`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Thumbnail); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories in creation order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	return findCategory(ctx, s.db, id)
}

func findCategory(ctx context.Context, q querier, id int64) (*models.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and sets its ID.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (title, slug, thumbnail) VALUES ($1, $2, $3) RETURNING id
	`, c.Title, c.Slug, c.Thumbnail).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update applies patch to the category with the given ID inside one
// transaction. It returns the updated row and the thumbnail URL the row
// held before the update. A nil category means the ID does not exist.
func (s *CategoryStore) Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, *string, error) {
	var (
		c    *models.Category
		prev *string
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		c, err = findCategory(ctx, tx, id)
		if err != nil || c == nil {
			return err
		}
		prev = c.Thumbnail
		patch.Apply(c)

		_, err = tx.ExecContext(ctx, `
			UPDATE categories SET title = $1, slug = $2, thumbnail = $3 WHERE id = $4
		`, c.Title, c.Slug, c.Thumbnail, c.ID)
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, prev, nil
}

// Delete removes the category and returns the deleted row so the caller
// can reclaim its thumbnail. Returns nil when the ID does not exist and
// ErrCategoryInUse while subcategories or articles still reference it.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (*models.Category, error) {
	var c *models.Category
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		c, err = findCategory(ctx, tx, id)
		if err != nil || c == nil {
			return err
		}

		var children int
		err = tx.QueryRowContext(ctx, `
			SELECT (SELECT COUNT(*) FROM subcategories WHERE category_id = $1)
			     + (SELECT COUNT(*) FROM articles WHERE category_id = $1)
		`, id).Scan(&children)
		if err != nil {
			return fmt.Errorf("count category children: %w", err)
		}
		if children > 0 {
			return ErrCategoryInUse
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
