package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"karkhana/internal/core"
)

func (r *SQLiteRepository) CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	if s.Name == "" {
		return core.Supplier{}, fmt.Errorf("validate supplier: %w", core.ErrEmptyName)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO suppliers (name, phone) VALUES (?, ?)`, s.Name, s.Phone)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return core.Supplier{}, fmt.Errorf("last insert id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone FROM suppliers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []core.Supplier
	for rows.Next() {
		var s core.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateSupplier(ctx context.Context, id int64, s core.Supplier) (core.Supplier, error) {
	if s.Name == "" {
		return core.Supplier{}, fmt.Errorf("validate supplier: %w", core.ErrEmptyName)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE suppliers SET name = ?, phone = ? WHERE id = ?`, s.Name, s.Phone, id)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Supplier{}, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}
	s.ID = id
	return s, nil
}

func (r *SQLiteRepository) DeleteSupplier(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateInventoryItem(ctx context.Context, it core.InventoryItem) (core.InventoryItem, error) {
	if it.Name == "" {
		return core.InventoryItem{}, fmt.Errorf("validate inventory item: %w", core.ErrEmptyName)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inventory (name, unit, stock, reorder_level) VALUES (?, ?, ?, ?)`,
		it.Name, it.Unit, it.Stock, it.ReorderLevel)
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("insert inventory item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("last insert id: %w", err)
	}
	return it, nil
}

func (r *SQLiteRepository) GetInventoryItem(ctx context.Context, id int64) (core.InventoryItem, error) {
	var it core.InventoryItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, unit, stock, reorder_level FROM inventory WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.Unit, &it.Stock, &it.ReorderLevel)
	if err == sql.ErrNoRows {
		return core.InventoryItem{}, fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

func (r *SQLiteRepository) ListInventory(ctx context.Context) ([]core.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, unit, stock, reorder_level FROM inventory ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var out []core.InventoryItem
	for rows.Next() {
		var it core.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.Stock, &it.ReorderLevel); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateInventoryItem(ctx context.Context, id int64, it core.InventoryItem) (core.InventoryItem, error) {
	if it.Name == "" {
		return core.InventoryItem{}, fmt.Errorf("validate inventory item: %w", core.ErrEmptyName)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET name = ?, unit = ?, stock = ?, reorder_level = ? WHERE id = ?`,
		it.Name, it.Unit, it.Stock, it.ReorderLevel, id)
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("update inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.InventoryItem{}, fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	it.ID = id
	return it, nil
}

func (r *SQLiteRepository) DeleteInventoryItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreatePurchase records a purchase and increments the stock of every
// linked inventory item, in one database transaction. The total is the
// sum of item amounts; an item's amount is quantity times rate.
func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	if err := p.Validate(); err != nil {
		return core.Purchase{}, fmt.Errorf("validate purchase: %w", err)
	}

	var total core.Money
	for i := range p.Items {
		it := &p.Items[i]
		it.Amount = core.Money{Paise: int64(float64(it.Rate.Paise)*it.Quantity + 0.5)}
		total = total.Add(it.Amount)
	}
	p.Total = total

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (supplier_id, purchase_date, total_paise) VALUES (?, ?, ?)`,
		nullID(p.SupplierID), formatDate(p.Date), p.Total.Paise)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Purchase{}, fmt.Errorf("last insert id: %w", err)
	}

	for i := range p.Items {
		it := &p.Items[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, item_id, description, quantity, rate_paise, amount_paise)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, nullID(it.ItemID), it.Description, it.Quantity, it.Rate.Paise, it.Amount.Paise)
		if err != nil {
			return core.Purchase{}, fmt.Errorf("insert purchase item: %w", err)
		}
		it.PurchaseID = p.ID
		if it.ID, err = res.LastInsertId(); err != nil {
			return core.Purchase{}, fmt.Errorf("last insert id: %w", err)
		}

		if it.ItemID != nil {
			upd, err := tx.ExecContext(ctx,
				`UPDATE inventory SET stock = stock + ? WHERE id = ?`, it.Quantity, *it.ItemID)
			if err != nil {
				return core.Purchase{}, fmt.Errorf("increment stock: %w", err)
			}
			if n, _ := upd.RowsAffected(); n == 0 {
				return core.Purchase{}, fmt.Errorf("inventory item %d: %w", *it.ItemID, ErrNotFound)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Purchase{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Purchase recorded",
		"id", p.ID, "items", len(p.Items), "total_paise", p.Total.Paise)
	return p, nil
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id int64) (core.Purchase, error) {
	var p core.Purchase
	var supplierID sql.NullInt64
	var dateStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, supplier_id, purchase_date, total_paise FROM purchases WHERE id = ?`, id).
		Scan(&p.ID, &supplierID, &dateStr, &p.Total.Paise)
	if err == sql.ErrNoRows {
		return core.Purchase{}, fmt.Errorf("purchase %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	p.SupplierID = idPtr(supplierID)
	if p.Date, err = parseDate(dateStr); err != nil {
		return core.Purchase{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, purchase_id, item_id, description, quantity, rate_paise, amount_paise
		FROM purchase_items WHERE purchase_id = ? ORDER BY id`, id)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it core.PurchaseItem
		var itemID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.PurchaseID, &itemID, &it.Description,
			&it.Quantity, &it.Rate.Paise, &it.Amount.Paise); err != nil {
			return core.Purchase{}, fmt.Errorf("scan purchase item: %w", err)
		}
		it.ItemID = idPtr(itemID)
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

func (r *SQLiteRepository) ListPurchases(ctx context.Context) ([]core.Purchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, supplier_id, purchase_date, total_paise FROM purchases ORDER BY purchase_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []core.Purchase
	for rows.Next() {
		var p core.Purchase
		var supplierID sql.NullInt64
		var dateStr string
		if err := rows.Scan(&p.ID, &supplierID, &dateStr, &p.Total.Paise); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		p.SupplierID = idPtr(supplierID)
		if p.Date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddShoppingItem(ctx context.Context, it core.ShoppingItem) (core.ShoppingItem, error) {
	if it.Description == "" {
		return core.ShoppingItem{}, fmt.Errorf("validate shopping item: %w", core.ErrEmptyDescription)
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list (description, quantity, done) VALUES (?, ?, ?)`,
		it.Description, it.Quantity, it.Done)
	if err != nil {
		return core.ShoppingItem{}, fmt.Errorf("insert shopping item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	if err != nil {
		return core.ShoppingItem{}, fmt.Errorf("last insert id: %w", err)
	}
	return it, nil
}

func (r *SQLiteRepository) ListShoppingItems(ctx context.Context) ([]core.ShoppingItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, quantity, done FROM shopping_list ORDER BY done, id`)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var out []core.ShoppingItem
	for rows.Next() {
		var it core.ShoppingItem
		if err := rows.Scan(&it.ID, &it.Description, &it.Quantity, &it.Done); err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetShoppingItemDone toggles the checked-off state.
func (r *SQLiteRepository) SetShoppingItemDone(ctx context.Context, id int64, done bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_list SET done = ? WHERE id = ?`, done, id)
	if err != nil {
		return fmt.Errorf("update shopping item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shopping item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteShoppingItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shopping item %d: %w", id, ErrNotFound)
	}
	return nil
}
