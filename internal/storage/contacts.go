package storage

import (
	"context"
	"database/sql"
	"fmt"

	"karkhana/internal/core"
)

func (r *SQLiteRepository) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	if err := c.Validate(); err != nil {
		return core.Contact{}, fmt.Errorf("validate contact: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (name, phone, email) VALUES (?, ?, ?)`,
		c.Name, c.Phone, c.Email)
	if err != nil {
		return core.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Contact{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetContact(ctx context.Context, id int64) (core.Contact, error) {
	var c core.Contact
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email FROM contacts WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email)
	if err == sql.ErrNoRows {
		return core.Contact{}, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListContacts(ctx context.Context) ([]core.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone, email FROM contacts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []core.Contact
	for rows.Next() {
		var c core.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateContact(ctx context.Context, id int64, c core.Contact) (core.Contact, error) {
	if err := c.Validate(); err != nil {
		return core.Contact{}, fmt.Errorf("validate contact: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, phone = ?, email = ? WHERE id = ?`,
		c.Name, c.Phone, c.Email, id)
	if err != nil {
		return core.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Contact{}, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	c.ID = id
	return c, nil
}

func (r *SQLiteRepository) DeleteContact(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	return nil
}

// ContactLedger returns the debt-marked transactions for one contact, the
// input to the running balance.
func (r *SQLiteRepository) ContactLedger(ctx context.Context, contactID int64) ([]core.Transaction, error) {
	if _, err := r.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return r.ListTransactions(ctx, TransactionFilter{ContactID: &contactID})
}
