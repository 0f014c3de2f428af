package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogdesk/internal/models"
)

// SubCategoryStore manages subcategories in the database.
type SubCategoryStore struct {
	db *sql.DB
}

// NewSubCategoryStore returns a new SubCategoryStore.
func NewSubCategoryStore(db *sql.DB) *SubCategoryStore {
	return &SubCategoryStore{db: db}
}

const subCategorySelect = `
	SELECT s.id, s.title, s.slug, s.thumbnail, s.category_id, c.title
	FROM subcategories s
	JOIN categories c ON c.id = s.category_id`

func scanSubCategory(row scanner) (*models.SubCategory, error) {
	var sc models.SubCategory
	err := row.Scan(&sc.ID, &sc.Title, &sc.Slug, &sc.Thumbnail, &sc.CategoryID, &sc.CategoryTitle)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// List returns subcategories in creation order. A non-empty search keeps
// only rows whose title contains it, ignoring case.
func (s *SubCategoryStore) List(ctx context.Context, search string) ([]models.SubCategory, error) {
	query := subCategorySelect
	var args []any
	if search != "" {
		query += ` WHERE LOWER(s.title) LIKE $1 ESCAPE '\'`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY s.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	items := []models.SubCategory{}
	for rows.Next() {
		sc, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, *sc)
	}
	return items, rows.Err()
}

// FindByID retrieves a subcategory by ID. Returns nil if not found.
func (s *SubCategoryStore) FindByID(ctx context.Context, id int64) (*models.SubCategory, error) {
	return findSubCategory(ctx, s.db, id)
}

func findSubCategory(ctx context.Context, q querier, id int64) (*models.SubCategory, error) {
	sc, err := scanSubCategory(q.QueryRowContext(ctx, subCategorySelect+` WHERE s.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by id: %w", err)
	}
	return sc, nil
}

// Create inserts a new subcategory and sets its ID and CategoryTitle.
// Returns ErrCategoryNotFound when the parent does not exist.
func (s *SubCategoryStore) Create(ctx context.Context, sc *models.SubCategory) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		title, err := categoryTitle(ctx, tx, sc.CategoryID)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO subcategories (title, slug, thumbnail, category_id)
			VALUES ($1, $2, $3, $4) RETURNING id
		`, sc.Title, sc.Slug, sc.Thumbnail, sc.CategoryID).Scan(&sc.ID)
		if err != nil {
			return fmt.Errorf("create subcategory: %w", err)
		}
		sc.CategoryTitle = title
		return nil
	})
}

// Update applies patch inside one transaction and returns the updated row
// plus the thumbnail URL held before. Moving to another category requires
// it to exist (ErrCategoryNotFound). A nil row means the ID does not exist.
func (s *SubCategoryStore) Update(ctx context.Context, id int64, patch models.SubCategoryPatch) (*models.SubCategory, *string, error) {
	var (
		sc   *models.SubCategory
		prev *string
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		sc, err = findSubCategory(ctx, tx, id)
		if err != nil || sc == nil {
			return err
		}
		prev = sc.Thumbnail

		if patch.CategoryID != nil && *patch.CategoryID != sc.CategoryID {
			if sc.CategoryTitle, err = categoryTitle(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
		}
		patch.Apply(sc)

		_, err = tx.ExecContext(ctx, `
			UPDATE subcategories SET title = $1, slug = $2, thumbnail = $3, category_id = $4
			WHERE id = $5
		`, sc.Title, sc.Slug, sc.Thumbnail, sc.CategoryID, sc.ID)
		if err != nil {
			return fmt.Errorf("update subcategory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sc, prev, nil
}

// Delete removes the subcategory and returns the deleted row. Returns nil
// when the ID does not exist.
func (s *SubCategoryStore) Delete(ctx context.Context, id int64) (*models.SubCategory, error) {
	var sc *models.SubCategory
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		sc, err = findSubCategory(ctx, tx, id)
		if err != nil || sc == nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete subcategory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}
