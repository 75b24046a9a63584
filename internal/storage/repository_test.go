package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"karkhana/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func rupees(r int64) core.Money {
	return core.Money{Paise: r * 100}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedWallet(t *testing.T, repo *SQLiteRepository, name string, balance core.Money) core.Wallet {
	t.Helper()
	w, err := repo.CreateWallet(context.Background(), core.Wallet{
		Name: name, Type: core.WalletPhysical, Balance: balance,
	})
	if err != nil {
		t.Fatalf("CreateWallet() error = %v", err)
	}
	return w
}

func TestTransactionLedger(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := seedWallet(t, repo, "Cash Box", rupees(1000))

	assertBalance := func(want core.Money) {
		t.Helper()
		got, err := repo.GetWallet(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetWallet() error = %v", err)
		}
		if got.Balance != want {
			t.Fatalf("wallet balance = %v, want %v", got.Balance, want)
		}
	}

	tr, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount:      rupees(500),
		Type:        core.Income,
		Description: "Gate repair payment",
		Date:        date(2024, time.March, 10),
		WalletID:    &w.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	assertBalance(rupees(1500))

	edited := tr
	edited.Amount = rupees(300)
	if _, err := repo.UpdateTransaction(ctx, tr.ID, edited); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	assertBalance(rupees(1300))

	if err := repo.DeleteTransaction(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	assertBalance(rupees(1000))
}

func TestUpdateTransactionMovesWalletEffect(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedWallet(t, repo, "Cash", rupees(1000))
	b := seedWallet(t, repo, "Bank", rupees(2000))

	tr, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount:      rupees(200),
		Type:        core.Expense,
		Description: "Welding rods",
		Date:        date(2024, time.March, 5),
		WalletID:    &a.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	moved := tr
	moved.WalletID = &b.ID
	if _, err := repo.UpdateTransaction(ctx, tr.ID, moved); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	gotA, _ := repo.GetWallet(ctx, a.ID)
	gotB, _ := repo.GetWallet(ctx, b.ID)
	if gotA.Balance != rupees(1000) {
		t.Errorf("old wallet balance = %v, want %v", gotA.Balance, rupees(1000))
	}
	if gotB.Balance != rupees(1800) {
		t.Errorf("new wallet balance = %v, want %v", gotB.Balance, rupees(1800))
	}
}

func TestCreateTransactionUnknownWallet(t *testing.T) {
	repo := newTestRepo(t)
	missing := int64(999)
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		Amount:      rupees(100),
		Type:        core.Income,
		Description: "x",
		Date:        date(2024, time.March, 1),
		WalletID:    &missing,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateTransactionUnknownWallet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := seedWallet(t, repo, "Cash", rupees(100))

	tr, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount:      rupees(50),
		Type:        core.Income,
		Description: "x",
		Date:        date(2024, time.March, 1),
		WalletID:    &w.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	missing := int64(999)
	tr.WalletID = &missing
	if _, err := repo.UpdateTransaction(ctx, tr.ID, tr); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTransaction() error = %v, want ErrNotFound", err)
	}

	// The failed move must not have touched the old wallet.
	got, err := repo.GetWallet(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetWallet() error = %v", err)
	}
	if got.Balance != rupees(150) {
		t.Errorf("wallet balance = %v, want 150.00", got.Balance)
	}
}

func TestReconcileWalletRepairsDrift(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := seedWallet(t, repo, "Cash", core.Money{})

	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: rupees(700), Type: core.Income, Description: "Advance received",
		Date: date(2024, time.March, 1), WalletID: &w.ID,
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: rupees(250), Type: core.Expense, Description: "Angle iron",
		Date: date(2024, time.March, 2), WalletID: &w.ID,
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	// Corrupt the stored balance directly to simulate drift.
	if _, err := repo.db.Exec(`UPDATE wallets SET balance_paise = 0 WHERE id = ?`, w.ID); err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}

	rr, err := repo.ReconcileWallet(ctx, w.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet() error = %v", err)
	}
	if rr.After != rupees(450) {
		t.Errorf("rebuilt balance = %v, want %v", rr.After, rupees(450))
	}
	if rr.Drift() != rupees(-450) {
		t.Errorf("drift = %v, want %v", rr.Drift(), rupees(-450))
	}

	got, _ := repo.GetWallet(ctx, w.ID)
	if got.Balance != rupees(450) {
		t.Errorf("wallet balance after reconcile = %v, want %v", got.Balance, rupees(450))
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := seedWallet(t, repo, "Cash", core.Money{})

	for _, tr := range []core.Transaction{
		{Amount: rupees(100), Type: core.Income, Description: "march income", Date: date(2024, time.March, 5), WalletID: &w.ID},
		{Amount: rupees(50), Type: core.Expense, Description: "march expense", Date: date(2024, time.March, 20)},
		{Amount: rupees(75), Type: core.Expense, Description: "april expense", Date: date(2024, time.April, 2)},
	} {
		if _, err := repo.CreateTransaction(ctx, tr); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	march := core.Month{Year: 2024, Month: time.March}
	got, err := repo.ListTransactions(ctx, TransactionFilter{Month: &march})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("month filter returned %d transactions, want 2", len(got))
	}

	got, err = repo.ListTransactions(ctx, TransactionFilter{WalletID: &w.ID, Type: core.Income})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(got) != 1 || got[0].Description != "march income" {
		t.Fatalf("wallet+type filter = %+v, want the march income row", got)
	}
}

func TestDocumentItemsExtended(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, DocEstimate, core.Document{
		Number: "EST-001",
		Title:  "Compound wall gate",
		Date:   date(2024, time.March, 12),
		Items: []core.LineItem{
			{
				Description: "MS gate panel",
				Dimensions:  core.Dimensions{Length: 4, Breadth: 5, Nos: 2, Unit: core.UnitSqft},
				Rate:        core.Money{Paise: 1250}, // 12.50 per sqft
			},
			{
				Description: "Grill section",
				Dimensions:  core.Dimensions{Nos: 3, Unit: core.UnitNos},
				Rate:        rupees(100),
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	got, err := repo.GetDocument(ctx, DocEstimate, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Items[0].Quantity != 40 {
		t.Errorf("item 0 quantity = %v, want 40", got.Items[0].Quantity)
	}
	if got.Items[0].Amount.Paise != 50000 {
		t.Errorf("item 0 amount = %d paise, want 50000", got.Items[0].Amount.Paise)
	}
	if want := (core.Money{Paise: 50000}).Add(rupees(300)); got.Total != want {
		t.Errorf("document total = %v, want %v", got.Total, want)
	}
	if got.Status != "" {
		t.Errorf("estimate status = %q, want empty", got.Status)
	}
}

func TestBillStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bill, err := repo.CreateDocument(ctx, DocBill, core.Document{
		Number: "BILL-007",
		Title:  "Staircase railing",
		Date:   date(2024, time.April, 1),
		Items: []core.LineItem{
			{Description: "Railing run", Dimensions: core.Dimensions{Length: 12, Nos: 1, Unit: core.UnitFt}, Rate: rupees(80)},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if bill.Status != core.BillDraft {
		t.Fatalf("new bill status = %q, want draft", bill.Status)
	}

	if err := repo.UpdateBillStatus(ctx, bill.ID, core.BillPaid); err != nil {
		t.Fatalf("UpdateBillStatus() error = %v", err)
	}
	got, _ := repo.GetDocument(ctx, DocBill, bill.ID)
	if got.Status != core.BillPaid {
		t.Errorf("bill status = %q, want paid", got.Status)
	}

	// An estimate id must not be reachable through the bill endpoints.
	est, _ := repo.CreateDocument(ctx, DocEstimate, core.Document{
		Number: "EST-002", Title: "Shed truss", Date: date(2024, time.April, 2),
	})
	if err := repo.UpdateBillStatus(ctx, est.ID, core.BillSent); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBillStatus(estimate) error = %v, want ErrNotFound", err)
	}
}

func TestMarkAttendanceUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.CreateStaff(ctx, core.Staff{Name: "Ramesh", Role: "Welder", DailyRate: rupees(800)})
	if err != nil {
		t.Fatalf("CreateStaff() error = %v", err)
	}

	day := date(2024, time.March, 4)
	if _, err := repo.MarkAttendance(ctx, core.Attendance{StaffID: s.ID, Date: day, Status: core.Present}); err != nil {
		t.Fatalf("MarkAttendance() error = %v", err)
	}
	if _, err := repo.MarkAttendance(ctx, core.Attendance{StaffID: s.ID, Date: day, Status: core.HalfDay}); err != nil {
		t.Fatalf("MarkAttendance() overwrite error = %v", err)
	}

	got, err := repo.ListAttendance(ctx, s.ID, day, day)
	if err != nil {
		t.Fatalf("ListAttendance() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("attendance rows = %d, want 1", len(got))
	}
	if got[0].Status != core.HalfDay {
		t.Errorf("attendance status = %q, want Half-Day", got[0].Status)
	}
}

func TestSetBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	march := core.Month{Year: 2024, Month: time.March}

	if _, err := repo.SetBudget(ctx, core.Budget{Month: march, Limit: rupees(5000)}); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if _, err := repo.SetBudget(ctx, core.Budget{Month: march, Limit: rupees(7000)}); err != nil {
		t.Fatalf("SetBudget() overwrite error = %v", err)
	}

	got, err := repo.ListBudgets(ctx, march)
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("budget rows = %d, want 1", len(got))
	}
	if got[0].Limit != rupees(7000) {
		t.Errorf("budget limit = %v, want 7000.00", got[0].Limit)
	}

	// A category-scoped budget lives next to the overall one, and each
	// upserts independently.
	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Material", Kind: core.Expense})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if _, err := repo.SetBudget(ctx, core.Budget{Month: march, CategoryID: &cat.ID, Limit: rupees(2000)}); err != nil {
		t.Fatalf("SetBudget() category error = %v", err)
	}
	if _, err := repo.SetBudget(ctx, core.Budget{Month: march, CategoryID: &cat.ID, Limit: rupees(3000)}); err != nil {
		t.Fatalf("SetBudget() category overwrite error = %v", err)
	}

	got, err = repo.ListBudgets(ctx, march)
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("budget rows = %d, want 2", len(got))
	}
	for _, b := range got {
		switch {
		case b.CategoryID == nil && b.Limit != rupees(7000):
			t.Errorf("overall limit = %v, want 7000.00", b.Limit)
		case b.CategoryID != nil && b.Limit != rupees(3000):
			t.Errorf("category limit = %v, want 3000.00", b.Limit)
		}
	}
}

func TestCreatePurchaseIncrementsStock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	item, err := repo.CreateInventoryItem(ctx, core.InventoryItem{Name: "MS pipe 1in", Unit: "ft", Stock: 10})
	if err != nil {
		t.Fatalf("CreateInventoryItem() error = %v", err)
	}

	p, err := repo.CreatePurchase(ctx, core.Purchase{
		Date: date(2024, time.March, 8),
		Items: []core.PurchaseItem{
			{ItemID: &item.ID, Description: "MS pipe 1in", Quantity: 24, Rate: rupees(45)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	if p.Total != rupees(1080) {
		t.Errorf("purchase total = %v, want 1080.00", p.Total)
	}

	got, _ := repo.GetInventoryItem(ctx, item.ID)
	if got.Stock != 34 {
		t.Errorf("stock after purchase = %v, want 34", got.Stock)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetTransaction(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := seedWallet(t, repo, "Cash", core.Money{})

	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: rupees(100), Type: core.Income, Description: "x",
		Date: date(2024, time.March, 1), WalletID: &w.ID,
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if _, err := repo.CreateDocument(ctx, DocBill, core.Document{
		Number: "B-1", Title: "Bill", Date: date(2024, time.March, 2),
	}); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	s, _ := repo.CreateStaff(ctx, core.Staff{Name: "Ramesh", DailyRate: rupees(800)})
	if _, err := repo.CreateAdvance(ctx, core.Advance{StaffID: s.ID, Amount: rupees(500), Date: date(2024, time.March, 3)}); err != nil {
		t.Fatalf("CreateAdvance() error = %v", err)
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Transactions) != 1 || len(snap.Bills) != 1 || len(snap.Advances) != 1 {
		t.Errorf("snapshot sizes = %d txns, %d bills, %d advances; want 1 each",
			len(snap.Transactions), len(snap.Bills), len(snap.Advances))
	}
}
