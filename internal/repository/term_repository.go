package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/glossary-api/internal/models"
)

const (
	termJoin           = "FROM terms t JOIN categories c ON t.category_id = c.id WHERE 1=1"
	publicTermColumns  = "c.name AS category_name, t.name AS term_name, t.definition"
	adminTermColumns   = "c.id AS category_id, c.name AS category_name, t.id AS term_id, t.name AS term_name, t.definition, t.alt1, t.alt2, t.alt3, t.inquiz"
	publicTermOrdering = "c.id ASC, t.name ASC"
	adminTermOrdering  = "c.id ASC, t.id ASC"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildTermQuery assembles the listing statement for the given filters and projection.
// Filters are appended in a fixed order (category id, category name, term name prefix)
// and every value is returned as a bound argument.
func BuildTermQuery(filter models.TermFilter, view models.TermView) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("c.id = $%d", len(args)+1))
		args = append(args, *filter.CategoryID)
	}
	if filter.CategoryName != "" {
		conditions = append(conditions, fmt.Sprintf("c.name = $%d", len(args)+1))
		args = append(args, filter.CategoryName)
	}
	if filter.TermName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(t.name) LIKE $%d", len(args)+1))
		args = append(args, likeEscaper.Replace(strings.ToLower(filter.TermName))+"%")
	}

	base := termJoin
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	columns, ordering := publicTermColumns, publicTermOrdering
	if view == models.TermViewAdmin {
		columns, ordering = adminTermColumns, adminTermOrdering
	}

	return fmt.Sprintf("SELECT %s %s ORDER BY %s", columns, base, ordering), args
}

// Store-level failures that callers translate into domain errors.
var (
	ErrDuplicate  = errors.New("unique constraint violated")
	ErrForeignKey = errors.New("foreign key constraint violated")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func classifyPQError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrForeignKey, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// TermRepository handles persistence for glossary terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository creates a new repository instance.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// ListPublic returns the consumer projection ordered by category id then term name.
func (r *TermRepository) ListPublic(ctx context.Context, filter models.TermFilter) ([]models.PublicTerm, error) {
	query, args := BuildTermQuery(filter, models.TermViewPublic)
	terms := make([]models.PublicTerm, 0)
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("list public terms: %w", err)
	}
	return terms, nil
}

// ListAdmin returns the full projection ordered by category id then term id.
func (r *TermRepository) ListAdmin(ctx context.Context, filter models.TermFilter) ([]models.AdminTerm, error) {
	query, args := BuildTermQuery(filter, models.TermViewAdmin)
	terms := make([]models.AdminTerm, 0)
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("list admin terms: %w", err)
	}
	return terms, nil
}

// ExistsByName checks whether a term with exactly this name exists, ignoring excludeID when non-zero.
func (r *TermRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM terms WHERE name = $1"
	args := []interface{}{name}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check term name: %w", err)
	}
	return true, nil
}

// Create inserts a term and stores the generated identifier on it.
func (r *TermRepository) Create(ctx context.Context, term *models.Term) error {
	const query = `INSERT INTO terms (name, category_id, definition, alt1, alt2, alt3, inquiz) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, term.Name, term.CategoryID, term.Definition, term.Alt1, term.Alt2, term.Alt3, term.InQuiz)
	if err := row.Scan(&term.ID); err != nil {
		return classifyPQError(err, "create term")
	}
	return nil
}

// Update replaces every mutable column of the term and returns the affected row count.
func (r *TermRepository) Update(ctx context.Context, term *models.Term) (int64, error) {
	const query = `UPDATE terms SET name = $1, category_id = $2, definition = $3, inquiz = $4, alt1 = $5, alt2 = $6, alt3 = $7 WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query, term.Name, term.CategoryID, term.Definition, term.InQuiz, term.Alt1, term.Alt2, term.Alt3, term.ID)
	if err != nil {
		return 0, classifyPQError(err, "update term")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update term rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a term and returns the affected row count.
func (r *TermRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete term: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete term rows affected: %w", err)
	}
	return affected, nil
}
