package finance

import (
	"testing"
	"time"

	"karkhana/internal/core"
)

func TestContactBalance(t *testing.T) {
	txns := []core.Transaction{
		{Amount: rupees(5000), Type: core.Expense, IsDebt: true, Description: "material on credit"},
		{Amount: rupees(2000), Type: core.Income, IsDebt: true, Description: "part payment"},
		{Amount: rupees(999), Type: core.Expense, IsDebt: false, Description: "cash purchase"}, // not debt-tracked
	}
	if got := ContactBalance(txns); got != rupees(3000) {
		t.Fatalf("expected 3000, got %v", got)
	}
}

func TestStanding(t *testing.T) {
	cases := []struct {
		balance core.Money
		want    ContactStanding
	}{
		{rupees(100), Debtor},
		{rupees(-100), Creditor},
		{core.Money{}, Settled},
	}
	for _, tc := range cases {
		if got := Standing(tc.balance); got != tc.want {
			t.Fatalf("%v: expected %s, got %s", tc.balance, tc.want, got)
		}
	}
}

func TestSettlementTransaction(t *testing.T) {
	on := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	// Debtor: contact owes 3000, settlement is one income of 3000.
	tx, ok := SettlementTransaction(7, rupees(3000), nil, on)
	if !ok {
		t.Fatal("expected a settlement transaction")
	}
	if tx.Type != core.Income || tx.Amount != rupees(3000) {
		t.Fatalf("expected income of 3000, got %s %v", tx.Type, tx.Amount)
	}
	if tx.Description != SettledDescription || !tx.IsDebt {
		t.Fatalf("unexpected settlement fields: %+v", tx)
	}
	if tx.ContactID == nil || *tx.ContactID != 7 {
		t.Fatalf("expected contact 7, got %v", tx.ContactID)
	}

	// Creditor: business owes 500, settlement is one expense of 500.
	tx, ok = SettlementTransaction(7, rupees(-500), nil, on)
	if !ok || tx.Type != core.Expense || tx.Amount != rupees(500) {
		t.Fatalf("expected expense of 500, got %+v (ok=%v)", tx, ok)
	}

	// Already settled: nothing to insert.
	if _, ok := SettlementTransaction(7, core.Money{}, nil, on); ok {
		t.Fatal("zero balance must not produce a transaction")
	}
}

// Settling then recomputing the balance must come out to zero without
// touching history.
func TestSettlementNeutralizesBalance(t *testing.T) {
	on := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{Amount: rupees(5000), Type: core.Expense, IsDebt: true, Description: "credit sale"},
		{Amount: rupees(2000), Type: core.Income, IsDebt: true, Description: "part payment"},
	}
	balance := ContactBalance(txns)
	settle, ok := SettlementTransaction(7, balance, nil, on)
	if !ok {
		t.Fatal("expected settlement")
	}
	txns = append(txns, settle)
	if got := ContactBalance(txns); !got.IsZero() {
		t.Fatalf("expected zero after settlement, got %v", got)
	}
	if len(txns) != 3 {
		t.Fatalf("settlement must append exactly one entry, got %d", len(txns))
	}
}
