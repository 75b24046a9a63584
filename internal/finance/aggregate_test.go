package finance

import (
	"reflect"
	"testing"
	"time"

	"karkhana/internal/core"
)

func rupees(r int64) core.Money { return core.Money{Paise: r * 100} }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(id int64) *int64 { return &id }

func TestSummarizeBudgetScenario(t *testing.T) {
	// Month 2024-03 with one income of 10000, one contact-less expense of
	// 4000, and a budget limit of 5000.
	month := core.Month{Year: 2024, Month: time.March}
	snap := Snapshot{
		Transactions: []core.Transaction{
			{Amount: rupees(10000), Type: core.Income, Description: "gate job", Date: date(2024, time.March, 5)},
			{Amount: rupees(4000), Type: core.Expense, Description: "angle iron", Date: date(2024, time.March, 12)},
		},
		Budgets: []core.Budget{
			{Month: month, Limit: rupees(5000)},
		},
	}

	s := Summarize(snap, month)

	if s.Income != rupees(10000) {
		t.Fatalf("income: expected 10000, got %v", s.Income)
	}
	if s.Expense != rupees(4000) {
		t.Fatalf("expense: expected 4000, got %v", s.Expense)
	}
	if s.Balance != rupees(6000) {
		t.Fatalf("balance: expected 6000, got %v", s.Balance)
	}
	if s.BudgetUsed != rupees(4000) {
		t.Fatalf("budget used: expected 4000, got %v", s.BudgetUsed)
	}
	if s.SpendingPct != 80 {
		t.Fatalf("spending pct: expected 80, got %d", s.SpendingPct)
	}
	// gap = (5000-4000) - 6000 = -5000 -> solvent
	if s.Solvency.Gap != rupees(-5000) {
		t.Fatalf("gap: expected -5000, got %v", s.Solvency.Gap)
	}
	if s.Solvency.IsInsolvent {
		t.Fatal("expected solvent")
	}
	if s.SavingsRatePct != 60 {
		t.Fatalf("savings rate: expected 60, got %d", s.SavingsRatePct)
	}
}

func TestSummarizeCountsBillsPurchasesAdvances(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}
	snap := Snapshot{
		Bills: []core.Document{
			{Status: core.BillPaid, Date: date(2024, time.March, 20), Total: rupees(2500)},
			{Status: core.BillSent, Date: date(2024, time.March, 21), Total: rupees(9999)}, // unpaid: ignored
			{Status: core.BillPaid, Date: date(2024, time.April, 1), Total: rupees(5000)},  // wrong month
		},
		Purchases: []core.Purchase{
			{Date: date(2024, time.March, 3), Total: rupees(700)},
		},
		Advances: []core.Advance{
			{StaffID: 1, Amount: rupees(300), Date: date(2024, time.March, 8)},
			{StaffID: 1, Amount: rupees(999), Date: date(2024, time.February, 8)}, // wrong month
		},
	}

	s := Summarize(snap, month)

	if s.Income != rupees(2500) {
		t.Fatalf("income: expected 2500 (paid bill only), got %v", s.Income)
	}
	if s.Expense != rupees(1000) {
		t.Fatalf("expense: expected 1000 (purchase+advance), got %v", s.Expense)
	}
}

func TestSummarizeZeroDivisionGuards(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}

	// No income, zero budget limit: rates must be 0, not NaN or panic.
	snap := Snapshot{
		Transactions: []core.Transaction{
			{Amount: rupees(500), Type: core.Expense, Description: "paint", Date: date(2024, time.March, 2)},
		},
		Budgets: []core.Budget{{Month: month, Limit: core.Money{}}},
	}
	s := Summarize(snap, month)
	if s.SavingsRatePct != 0 {
		t.Fatalf("savings rate with zero income: expected 0, got %d", s.SavingsRatePct)
	}
	if s.SpendingPct != 0 {
		t.Fatalf("spending pct with zero limit: expected 0, got %d", s.SpendingPct)
	}
}

func TestSummarizeRunway(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}

	// Zero burn this month.
	s := Summarize(Snapshot{}, month)
	if s.Runway != NoBurn {
		t.Fatalf("expected %q, got %q", NoBurn, s.Runway)
	}

	// Global balance 12000, burn 4000 -> 3 months.
	snap := Snapshot{
		Transactions: []core.Transaction{
			{Amount: rupees(16000), Type: core.Income, Description: "old job", Date: date(2023, time.June, 1)},
			{Amount: rupees(4000), Type: core.Expense, Description: "steel", Date: date(2024, time.March, 1)},
		},
	}
	s = Summarize(snap, month)
	if s.Runway != "3" {
		t.Fatalf("expected runway 3, got %q", s.Runway)
	}

	// Huge global balance caps at 60+.
	snap.Transactions[0].Amount = rupees(10_000_000)
	s = Summarize(snap, month)
	if s.Runway != "60+" {
		t.Fatalf("expected runway 60+, got %q", s.Runway)
	}
}

func TestSummarizeTopCategory(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}
	snap := Snapshot{
		Categories: []core.Category{
			{ID: 1, Name: "Raw Material", Kind: core.Expense},
			{ID: 2, Name: "Transport", Kind: core.Expense},
		},
		Transactions: []core.Transaction{
			{Amount: rupees(100), Type: core.Expense, CategoryID: ptr(2), Description: "tempo", Date: date(2024, time.March, 1)},
			{Amount: rupees(900), Type: core.Expense, CategoryID: ptr(1), Description: "sheets", Date: date(2024, time.March, 2)},
			{Amount: rupees(50), Type: core.Expense, Description: "chai", Date: date(2024, time.March, 3)},
			// Contact-linked expense is not budgetable and must not count.
			{Amount: rupees(5000), Type: core.Expense, CategoryID: ptr(2), ContactID: ptr(7), Description: "debt", Date: date(2024, time.March, 4)},
		},
	}

	s := Summarize(snap, month)
	if s.TopCategory != "Raw Material" {
		t.Fatalf("expected Raw Material, got %q", s.TopCategory)
	}
	if s.BudgetUsed != rupees(1050) {
		t.Fatalf("budget used: expected 1050, got %v", s.BudgetUsed)
	}

	// Tie goes to the category seen first.
	snap.Transactions[1].Amount = rupees(100)
	s = Summarize(snap, month)
	if s.TopCategory != "Transport" {
		t.Fatalf("tie: expected Transport (first seen), got %q", s.TopCategory)
	}
}

func TestSummarizeCategoryUsage(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}
	snap := Snapshot{
		Categories: []core.Category{
			{ID: 1, Name: "Raw Material", Kind: core.Expense},
			{ID: 2, Name: "Transport", Kind: core.Expense},
			{ID: 3, Name: "Job Income", Kind: core.Income}, // not an expense category
		},
		Budgets: []core.Budget{
			{Month: month, CategoryID: ptr(1), Limit: rupees(1000)},
		},
		Transactions: []core.Transaction{
			{Amount: rupees(1500), Type: core.Expense, CategoryID: ptr(1), Description: "overrun", Date: date(2024, time.March, 2)},
		},
	}

	s := Summarize(snap, month)
	if len(s.Categories) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(s.Categories))
	}
	raw := s.Categories[0]
	if raw.Name != "Raw Material" || raw.Used != rupees(1500) || raw.Limit != rupees(1000) {
		t.Fatalf("unexpected raw material usage: %+v", raw)
	}
	if raw.Remaining.Paise != 0 {
		t.Fatalf("remaining clamps at zero, got %v", raw.Remaining)
	}
	if raw.Pct != 100 {
		t.Fatalf("pct caps at 100, got %d", raw.Pct)
	}
	transport := s.Categories[1]
	if transport.Pct != 0 || !transport.Used.IsZero() {
		t.Fatalf("unused category with zero limit should be all zeros: %+v", transport)
	}
}

func TestSummarizeIsPure(t *testing.T) {
	month := core.Month{Year: 2024, Month: time.March}
	snap := Snapshot{
		Transactions: []core.Transaction{
			{Amount: rupees(10000), Type: core.Income, Description: "job", Date: date(2024, time.March, 5)},
			{Amount: rupees(4000), Type: core.Expense, Description: "steel", Date: date(2024, time.March, 12)},
		},
	}

	first := Summarize(snap, month)
	second := Summarize(snap, month)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("Summarize must be deterministic for identical inputs")
	}

	// An unrelated month's transaction must not change this month's
	// income/expense/budget figures (runway reads all-time totals).
	snap.Transactions = append(snap.Transactions, core.Transaction{
		Amount: rupees(777), Type: core.Expense, Description: "later", Date: date(2024, time.May, 1),
	})
	third := Summarize(snap, month)
	if third.Income != first.Income || third.Expense != first.Expense || third.BudgetUsed != first.BudgetUsed {
		t.Fatal("unrelated month leaked into the summary")
	}
}
