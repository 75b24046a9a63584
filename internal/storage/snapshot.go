package storage

import (
	"context"
	"fmt"

	"karkhana/internal/core"
	"karkhana/internal/finance"
)

// LoadSnapshot pulls every collection the monthly summary reads. All
// months are loaded: the runway figure needs all-time totals, not just
// the requested month.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (finance.Snapshot, error) {
	var snap finance.Snapshot
	var err error

	if snap.Transactions, err = r.ListTransactions(ctx, TransactionFilter{}); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if snap.Bills, err = r.ListDocuments(ctx, DocBill); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load bills: %w", err)
	}
	if snap.Purchases, err = r.ListPurchases(ctx); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load purchases: %w", err)
	}
	if snap.Advances, err = r.listAllAdvances(ctx); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load advances: %w", err)
	}
	if snap.Budgets, err = r.listAllBudgets(ctx); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load budgets: %w", err)
	}
	if snap.Categories, err = r.ListCategories(ctx); err != nil {
		return finance.Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) listAllAdvances(ctx context.Context) ([]core.Advance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, staff_id, amount_paise, date, notes FROM staff_advances ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list advances: %w", err)
	}
	defer rows.Close()

	var out []core.Advance
	for rows.Next() {
		var a core.Advance
		var dateStr string
		if err := rows.Scan(&a.ID, &a.StaffID, &a.Amount.Paise, &dateStr, &a.Notes); err != nil {
			return nil, fmt.Errorf("scan advance: %w", err)
		}
		if a.Date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
