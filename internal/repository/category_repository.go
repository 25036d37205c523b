package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/glossary-api/internal/models"
)

// CategoryRepository reads categories. Categories are never written by the API.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new repository instance.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindIDByName resolves a category name to its id. It returns sql.ErrNoRows when no
// category matches; the lowest id wins when several do.
func (r *CategoryRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	const query = `SELECT id FROM categories WHERE name = $1 ORDER BY id ASC LIMIT 1`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("find category by name: %w", err)
	}
	return id, nil
}
