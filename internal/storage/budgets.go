package storage

import (
	"context"
	"database/sql"
	"fmt"

	"karkhana/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Name == "" {
		return core.Category{}, fmt.Errorf("validate category: %w", core.ErrEmptyName)
	}
	if err := c.Kind.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, kind) VALUES (?, ?)`, c.Name, c.Kind)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetBudget creates or overwrites the limit for a month and category.
// A nil category sets the overall month limit.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Month.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}
	if b.Limit.Paise < 0 {
		return core.Budget{}, fmt.Errorf("validate budget: %w", core.ErrInvalidAmount)
	}
	// The conflict target must name the partial index that guards each
	// case: the overall month row has a NULL category, which a plain
	// (month, category_id) target never matches.
	var err error
	if b.CategoryID == nil {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO budgets (month, category_id, limit_paise) VALUES (?, NULL, ?)
			ON CONFLICT (month) WHERE category_id IS NULL
			DO UPDATE SET limit_paise = excluded.limit_paise`,
			b.Month.String(), b.Limit.Paise)
	} else {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO budgets (month, category_id, limit_paise) VALUES (?, ?, ?)
			ON CONFLICT (month, category_id) WHERE category_id IS NOT NULL
			DO UPDATE SET limit_paise = excluded.limit_paise`,
			b.Month.String(), *b.CategoryID, b.Limit.Paise)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE month = ? AND category_id IS ?`,
		b.Month.String(), nullID(b.CategoryID)).Scan(&b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("read budget id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, category_id, limit_paise FROM budgets WHERE month = ? ORDER BY id`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	return scanBudgets(rows)
}

func (r *SQLiteRepository) listAllBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, category_id, limit_paise FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	return scanBudgets(rows)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanBudgets(rows *sql.Rows) ([]core.Budget, error) {
	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var monthStr string
		var categoryID sql.NullInt64
		if err := rows.Scan(&b.ID, &monthStr, &categoryID, &b.Limit.Paise); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		m, err := core.ParseMonth(monthStr)
		if err != nil {
			return nil, err
		}
		b.Month = m
		b.CategoryID = idPtr(categoryID)
		out = append(out, b)
	}
	return out, rows.Err()
}
