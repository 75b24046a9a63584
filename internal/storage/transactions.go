package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"karkhana/internal/core"
)

// TransactionFilter narrows ListTransactions. Nil fields match everything.
type TransactionFilter struct {
	Month     *core.Month
	WalletID  *int64
	ContactID *int64
	Type      core.TransactionType
}

// ReconcileResult reports one wallet's balance rebuild.
type ReconcileResult struct {
	WalletID int64
	Before   core.Money
	After    core.Money
}

// Drift is the error the stored balance had accumulated before the rebuild.
func (rr ReconcileResult) Drift() core.Money {
	return rr.Before.Sub(rr.After)
}

const transactionColumns = `id, amount_paise, type, category_id, description,
	transaction_date, contact_id, wallet_id, project_id, is_debt`

// CreateTransaction inserts a transaction and applies its signed effect to
// the linked wallet, atomically. The wallet write is a server-side
// increment, so concurrent creates cannot lose an update.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if t.WalletID != nil {
		if err := walletExistsTx(ctx, tx, *t.WalletID); err != nil {
			return core.Transaction{}, err
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (amount_paise, type, category_id, description,
			transaction_date, contact_id, wallet_id, project_id, is_debt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Amount.Paise, t.Type, nullID(t.CategoryID), t.Description,
		formatDate(t.Date), nullID(t.ContactID), nullID(t.WalletID),
		nullID(t.ProjectID), t.IsDebt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	if t.WalletID != nil {
		if err := applyWalletDelta(ctx, tx, *t.WalletID, t.Effect()); err != nil {
			return core.Transaction{}, fmt.Errorf("apply wallet effect: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", t.Type,
		"amount_paise", t.Amount.Paise,
		"wallet_id", nullID(t.WalletID))
	return t, nil
}

// UpdateTransaction rewrites a transaction and moves its wallet effect:
// the old effect is reversed on the old wallet and the new effect applied
// to the (possibly different) new wallet, all in one database transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	old, err := getTransactionTx(ctx, tx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.WalletID != nil {
		if err := walletExistsTx(ctx, tx, *t.WalletID); err != nil {
			return core.Transaction{}, err
		}
	}

	if old.WalletID != nil {
		if err := applyWalletDelta(ctx, tx, *old.WalletID, old.Effect().Neg()); err != nil {
			return core.Transaction{}, fmt.Errorf("reverse old wallet effect: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount_paise = ?, type = ?, category_id = ?, description = ?,
			transaction_date = ?, contact_id = ?, wallet_id = ?, project_id = ?, is_debt = ?
		WHERE id = ?`,
		t.Amount.Paise, t.Type, nullID(t.CategoryID), t.Description,
		formatDate(t.Date), nullID(t.ContactID), nullID(t.WalletID),
		nullID(t.ProjectID), t.IsDebt, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	if t.WalletID != nil {
		if err := applyWalletDelta(ctx, tx, *t.WalletID, t.Effect()); err != nil {
			return core.Transaction{}, fmt.Errorf("apply new wallet effect: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	t.ID = id
	slog.InfoContext(ctx, "Transaction updated", "id", id, "type", t.Type, "amount_paise", t.Amount.Paise)
	return t, nil
}

// DeleteTransaction reverses the transaction's wallet effect and removes
// the row, atomically.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	old, err := getTransactionTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if old.WalletID != nil {
		if err := applyWalletDelta(ctx, tx, *old.WalletID, old.Effect().Neg()); err != nil {
			return fmt.Errorf("reverse wallet effect: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListTransactions returns transactions matching the filter, most recent
// date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if f.Month != nil {
		query += ` AND transaction_date >= ? AND transaction_date < ?`
		args = append(args, formatDate(f.Month.First()), formatDate(f.Month.First().AddDate(0, 1, 0)))
	}
	if f.WalletID != nil {
		query += ` AND wallet_id = ?`
		args = append(args, *f.WalletID)
	}
	if f.ContactID != nil {
		query += ` AND contact_id = ?`
		args = append(args, *f.ContactID)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY transaction_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReconcileWallet rebuilds one wallet's stored balance from its full
// transaction history. Transactions are the source of truth; the balance
// column is a projection that this replay overwrites.
func (r *SQLiteRepository) ReconcileWallet(ctx context.Context, walletID int64) (ReconcileResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rr := ReconcileResult{WalletID: walletID}
	err = tx.QueryRowContext(ctx,
		`SELECT balance_paise FROM wallets WHERE id = ?`, walletID).Scan(&rr.Before.Paise)
	if err == sql.ErrNoRows {
		return ReconcileResult{}, fmt.Errorf("wallet %d: %w", walletID, ErrNotFound)
	}
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("read wallet balance: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount_paise ELSE -amount_paise END), 0)
		FROM transactions WHERE wallet_id = ?`, walletID).Scan(&rr.After.Paise)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("replay transactions: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_paise = ? WHERE id = ?`, rr.After.Paise, walletID); err != nil {
		return ReconcileResult{}, fmt.Errorf("write rebuilt balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ReconcileResult{}, fmt.Errorf("commit: %w", err)
	}

	if drift := rr.Drift(); !drift.IsZero() {
		slog.WarnContext(ctx, "Wallet balance drift repaired",
			"wallet_id", walletID,
			"before_paise", rr.Before.Paise,
			"after_paise", rr.After.Paise)
	}
	return rr, nil
}

// ReconcileAllWallets replays every wallet's history.
func (r *SQLiteRepository) ReconcileAllWallets(ctx context.Context) ([]ReconcileResult, error) {
	wallets, err := r.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]ReconcileResult, 0, len(wallets))
	for _, w := range wallets {
		rr, err := r.ReconcileWallet(ctx, w.ID)
		if err != nil {
			return results, fmt.Errorf("reconcile wallet %d: %w", w.ID, err)
		}
		results = append(results, rr)
	}
	return results, nil
}

// walletExistsTx confirms the referenced wallet inside the caller's
// transaction, so a bad reference surfaces as ErrNotFound instead of the
// driver's foreign-key constraint error.
func walletExistsTx(ctx context.Context, tx *sql.Tx, walletID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM wallets WHERE id = ?`, walletID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("wallet %d: %w", walletID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check wallet: %w", err)
	}
	return nil
}

// applyWalletDelta applies a signed balance change as a server-side
// increment inside the caller's transaction.
func applyWalletDelta(ctx context.Context, tx *sql.Tx, walletID int64, delta core.Money) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_paise = balance_paise + ? WHERE id = ?`,
		delta.Paise, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wallet %d: %w", walletID, ErrNotFound)
	}
	return nil
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var dateStr string
	var categoryID, contactID, walletID, projectID sql.NullInt64
	err := row.Scan(&t.ID, &t.Amount.Paise, &t.Type, &categoryID, &t.Description,
		&dateStr, &contactID, &walletID, &projectID, &t.IsDebt)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction: %w", ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.CategoryID = idPtr(categoryID)
	t.ContactID = idPtr(contactID)
	t.WalletID = idPtr(walletID)
	t.ProjectID = idPtr(projectID)
	t.Date, err = parseDate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
