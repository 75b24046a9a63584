package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"karkhana/internal/core"
)

// DocKind selects which family of documents an operation touches.
type DocKind string

const (
	DocEstimate    DocKind = "estimate"
	DocBill        DocKind = "bill"
	DocMeasurement DocKind = "measurement"
)

func (k DocKind) Validate() error {
	switch k {
	case DocEstimate, DocBill, DocMeasurement:
		return nil
	}
	return core.ErrInvalidType
}

// CreateDocument writes a document header and its line items in one
// database transaction. Item quantities, amounts, and the document total
// are recomputed from the dimensions server-side; client-supplied figures
// are ignored.
func (r *SQLiteRepository) CreateDocument(ctx context.Context, kind DocKind, d core.Document) (core.Document, error) {
	if err := kind.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("validate document kind: %w", err)
	}
	if err := d.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("validate document: %w", err)
	}
	extendItems(&d)
	if kind == DocBill && d.Status == "" {
		d.Status = core.BillDraft
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Document{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (doc_type, number, contact_id, title, doc_date, status, total_paise)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		kind, d.Number, nullID(d.ContactID), d.Title, formatDate(d.Date), d.Status, d.Total.Paise)
	if err != nil {
		return core.Document{}, fmt.Errorf("insert document: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return core.Document{}, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertItems(ctx, tx, d.ID, d.Items); err != nil {
		return core.Document{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Document{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Document created",
		"kind", kind, "id", d.ID, "items", len(d.Items), "total_paise", d.Total.Paise)
	return d, nil
}

// UpdateDocument replaces the header and the full item set.
func (r *SQLiteRepository) UpdateDocument(ctx context.Context, kind DocKind, id int64, d core.Document) (core.Document, error) {
	if err := kind.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("validate document kind: %w", err)
	}
	if err := d.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("validate document: %w", err)
	}
	extendItems(&d)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Document{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	old, err := getDocumentHeaderTx(ctx, tx, kind, id)
	if err != nil {
		return core.Document{}, err
	}
	if d.Status == "" {
		d.Status = old.Status
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE documents
		SET number = ?, contact_id = ?, title = ?, doc_date = ?, status = ?, total_paise = ?
		WHERE id = ?`,
		d.Number, nullID(d.ContactID), d.Title, formatDate(d.Date), d.Status, d.Total.Paise, id)
	if err != nil {
		return core.Document{}, fmt.Errorf("update document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_items WHERE document_id = ?`, id); err != nil {
		return core.Document{}, fmt.Errorf("clear document items: %w", err)
	}
	if err := insertItems(ctx, tx, id, d.Items); err != nil {
		return core.Document{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Document{}, fmt.Errorf("commit: %w", err)
	}

	d.ID = id
	return d, nil
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, kind DocKind, id int64) (core.Document, error) {
	var d core.Document
	var contactID sql.NullInt64
	var dateStr string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, number, contact_id, title, doc_date, status, total_paise
		FROM documents WHERE id = ? AND doc_type = ?`, id, kind).
		Scan(&d.ID, &d.Number, &contactID, &d.Title, &dateStr, &d.Status, &d.Total.Paise)
	if err == sql.ErrNoRows {
		return core.Document{}, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("get document: %w", err)
	}
	d.ContactID = idPtr(contactID)
	if d.Date, err = parseDate(dateStr); err != nil {
		return core.Document{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, description, length, breadth, nos, unit, rate_paise, quantity, amount_paise
		FROM document_items WHERE document_id = ? ORDER BY id`, id)
	if err != nil {
		return core.Document{}, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li core.LineItem
		if err := rows.Scan(&li.ID, &li.DocumentID, &li.Description,
			&li.Dimensions.Length, &li.Dimensions.Breadth, &li.Dimensions.Nos, &li.Dimensions.Unit,
			&li.Rate.Paise, &li.Quantity, &li.Amount.Paise); err != nil {
			return core.Document{}, fmt.Errorf("scan document item: %w", err)
		}
		d.Items = append(d.Items, li)
	}
	return d, rows.Err()
}

// ListDocuments returns headers only, newest first. Items are loaded by
// GetDocument.
func (r *SQLiteRepository) ListDocuments(ctx context.Context, kind DocKind) ([]core.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, contact_id, title, doc_date, status, total_paise
		FROM documents WHERE doc_type = ?
		ORDER BY doc_date DESC, id DESC`, kind)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []core.Document
	for rows.Next() {
		var d core.Document
		var contactID sql.NullInt64
		var dateStr string
		if err := rows.Scan(&d.ID, &d.Number, &contactID, &d.Title, &dateStr, &d.Status, &d.Total.Paise); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.ContactID = idPtr(contactID)
		if d.Date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteDocument(ctx context.Context, kind DocKind, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND doc_type = ?`, id, kind)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// UpdateBillStatus moves a bill through draft, sent, paid.
func (r *SQLiteRepository) UpdateBillStatus(ctx context.Context, id int64, status core.BillStatus) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("validate bill status: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ? AND doc_type = ?`,
		status, id, DocBill)
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bill %d: %w", id, ErrNotFound)
	}
	slog.InfoContext(ctx, "Bill status updated", "id", id, "status", status)
	return nil
}

// extendItems recomputes every item's quantity and amount from its
// dimensions and sums the document total.
func extendItems(d *core.Document) {
	var total core.Money
	for i := range d.Items {
		q, amount := core.Extend(d.Items[i].Dimensions, d.Items[i].Rate)
		d.Items[i].Quantity = q
		d.Items[i].Amount = amount
		total = total.Add(amount)
	}
	d.Total = total
}

func insertItems(ctx context.Context, tx *sql.Tx, documentID int64, items []core.LineItem) error {
	for i := range items {
		li := &items[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO document_items (document_id, description, length, breadth, nos, unit, rate_paise, quantity, amount_paise)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			documentID, li.Description,
			li.Dimensions.Length, li.Dimensions.Breadth, li.Dimensions.Nos, li.Dimensions.Unit,
			li.Rate.Paise, li.Quantity, li.Amount.Paise)
		if err != nil {
			return fmt.Errorf("insert document item: %w", err)
		}
		li.DocumentID = documentID
		if li.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}
	return nil
}

func getDocumentHeaderTx(ctx context.Context, tx *sql.Tx, kind DocKind, id int64) (core.Document, error) {
	var d core.Document
	var contactID sql.NullInt64
	var dateStr string
	err := tx.QueryRowContext(ctx, `
		SELECT id, number, contact_id, title, doc_date, status, total_paise
		FROM documents WHERE id = ? AND doc_type = ?`, id, kind).
		Scan(&d.ID, &d.Number, &contactID, &d.Title, &dateStr, &d.Status, &d.Total.Paise)
	if err == sql.ErrNoRows {
		return core.Document{}, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("get document: %w", err)
	}
	d.ContactID = idPtr(contactID)
	if d.Date, err = parseDate(dateStr); err != nil {
		return core.Document{}, err
	}
	return d, nil
}
