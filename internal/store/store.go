// Package store provides database access methods for all blogdesk
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Queries use $N placeholders, which both SQLite and PostgreSQL
// accept, so the same SQL runs on either driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by the stores. Handlers map them to HTTP
// statuses; everything else is an internal failure.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInUse     = errors.New("category has subcategories or articles")
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// categoryTitle returns the title of the category with the given id, or
// ErrCategoryNotFound.
func categoryTitle(ctx context.Context, q querier, id int64) (string, error) {
	var title string
	err := q.QueryRowContext(ctx, `SELECT title FROM categories WHERE id = $1`, id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", ErrCategoryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup category: %w", err)
	}
	return title, nil
}

// likePattern builds a case-insensitive substring pattern for
// `LOWER(col) LIKE $n ESCAPE '\'`, matching % and _ literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}
