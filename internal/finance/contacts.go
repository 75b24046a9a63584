package finance

import (
	"time"

	"karkhana/internal/core"
)

// SettledDescription marks the offsetting transaction a settlement inserts.
const SettledDescription = "Account Settled"

// ContactStanding classifies a contact's derived balance.
type ContactStanding string

const (
	Debtor   ContactStanding = "debtor"   // contact owes the business
	Creditor ContactStanding = "creditor" // business owes the contact
	Settled  ContactStanding = "settled"
)

// ContactBalance derives a contact's running balance from its transaction
// history: expenses minus incomes over debt-tracked entries, all-time.
// Positive means the contact owes the business.
func ContactBalance(txns []core.Transaction) core.Money {
	var balance core.Money
	for _, t := range txns {
		if !t.IsDebt {
			continue
		}
		switch t.Type {
		case core.Expense:
			balance = balance.Add(t.Amount)
		case core.Income:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// Standing classifies a derived balance.
func Standing(balance core.Money) ContactStanding {
	switch {
	case balance.Paise > 0:
		return Debtor
	case balance.Paise < 0:
		return Creditor
	default:
		return Settled
	}
}

// SettlementTransaction builds the single offsetting transaction that
// neutralizes a contact's balance. History is never mutated or deleted;
// settling appends exactly one entry of the opposite sign.
//
// Returns ok=false when the balance is already zero and there is nothing
// to settle.
func SettlementTransaction(contactID int64, balance core.Money, walletID *int64, on time.Time) (core.Transaction, bool) {
	if balance.IsZero() {
		return core.Transaction{}, false
	}
	t := core.Transaction{
		Amount:      balance.Abs(),
		Description: SettledDescription,
		Date:        on,
		ContactID:   &contactID,
		WalletID:    walletID,
		IsDebt:      true,
	}
	if balance.Paise > 0 {
		// Contact owed us; the settlement is money coming in.
		t.Type = core.Income
	} else {
		t.Type = core.Expense
	}
	return t, true
}
