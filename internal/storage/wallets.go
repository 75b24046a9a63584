package storage

import (
	"context"
	"database/sql"
	"fmt"

	"karkhana/internal/core"
)

func (r *SQLiteRepository) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, fmt.Errorf("validate wallet: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (name, type, balance_paise) VALUES (?, ?, ?)`,
		w.Name, w.Type, w.Balance.Paise)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}
	w.ID, err = res.LastInsertId()
	if err != nil {
		return core.Wallet{}, fmt.Errorf("last insert id: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, id int64) (core.Wallet, error) {
	var w core.Wallet
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, balance_paise FROM wallets WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.Type, &w.Balance.Paise)
	if err == sql.ErrNoRows {
		return core.Wallet{}, fmt.Errorf("wallet %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, balance_paise FROM wallets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		var w core.Wallet
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.Balance.Paise); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateWallet renames or retypes a wallet. The balance is owned by the
// transaction ledger and is not writable here.
func (r *SQLiteRepository) UpdateWallet(ctx context.Context, id int64, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, fmt.Errorf("validate wallet: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET name = ?, type = ? WHERE id = ?`, w.Name, w.Type, id)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("update wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Wallet{}, fmt.Errorf("wallet %d: %w", id, ErrNotFound)
	}
	return r.GetWallet(ctx, id)
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("wallet %d: %w", id, ErrNotFound)
	}
	return nil
}
