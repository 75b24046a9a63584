// Package finance computes derived financial views: the monthly summary,
// contact balances, and staff payroll. Everything here is pure arithmetic
// over in-memory collections; persistence and caching live elsewhere.
package finance

import "karkhana/internal/core"

// DefaultMonthlyBudget is the fallback overall limit when no budget record
// exists for the month (80000.00).
var DefaultMonthlyBudget = core.Money{Paise: 8_000_000}

// NoBurn is the runway sentinel for a month with zero expense.
const NoBurn = "No Burn"

// Snapshot is the in-memory input of Summarize: every collection the
// monthly summary reads. It is loaded fresh per computation; the summary
// is a derived view, never stored state.
type Snapshot struct {
	Transactions []core.Transaction
	Bills        []core.Document
	Purchases    []core.Purchase
	Advances     []core.Advance
	Budgets      []core.Budget
	Categories   []core.Category
}

// Solvency compares what the budget still allows against what the month
// actually has left. A positive gap means planned spending exceeds the
// month's balance.
type Solvency struct {
	Gap         core.Money
	IsInsolvent bool
}

// CategoryUsage is the per-category budget line of the summary.
type CategoryUsage struct {
	Name      string
	Limit     core.Money
	Used      core.Money
	Remaining core.Money
	Pct       int
}

// Summary is the read-only monthly financial summary.
type Summary struct {
	Month          core.Month
	Income         core.Money
	Expense        core.Money
	Balance        core.Money
	BudgetLimit    core.Money
	BudgetUsed     core.Money
	SpendingPct    int
	Solvency       Solvency
	SavingsRatePct int
	Runway         string
	TopCategory    string
	Categories     []CategoryUsage
}
