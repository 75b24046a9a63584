package finance

import (
	"math"
	"strconv"

	"karkhana/internal/core"
)

// Uncategorized is the bucket name for expenses with no category.
const Uncategorized = "Uncategorized"

// Summarize computes the financial summary for one calendar month from a
// snapshot of the business data. It is pure: calling it twice with the
// same snapshot returns identical output, and months outside the target
// affect only the all-time runway figures.
func Summarize(snap Snapshot, month core.Month) Summary {
	s := Summary{Month: month}

	// Month partition by calendar year/month match.
	var monthTx []core.Transaction
	for _, t := range snap.Transactions {
		if month.Contains(t.Date) {
			monthTx = append(monthTx, t)
		}
	}

	for _, t := range monthTx {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	for _, b := range snap.Bills {
		if b.Status == core.BillPaid && month.Contains(b.Date) {
			s.Income = s.Income.Add(b.Total)
		}
	}
	for _, p := range snap.Purchases {
		if month.Contains(p.Date) {
			s.Expense = s.Expense.Add(p.Total)
		}
	}
	for _, a := range snap.Advances {
		if month.Contains(a.Date) {
			s.Expense = s.Expense.Add(a.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)

	// Budget tracking covers only contact-less expense transactions.
	budgetable := make([]core.Transaction, 0, len(monthTx))
	for _, t := range monthTx {
		if t.Type == core.Expense && t.ContactID == nil {
			budgetable = append(budgetable, t)
			s.BudgetUsed = s.BudgetUsed.Add(t.Amount)
		}
	}
	s.BudgetLimit = overallLimit(snap.Budgets, month)
	s.SpendingPct = pctOf(s.BudgetUsed, s.BudgetLimit, math.MaxInt)

	s.Solvency.Gap = s.BudgetLimit.Sub(s.BudgetUsed).Sub(s.Balance)
	s.Solvency.IsInsolvent = s.Solvency.Gap.Paise > 0

	if s.Income.Paise != 0 {
		s.SavingsRatePct = roundPct(s.Income.Sub(s.Expense), s.Income)
	}

	s.Runway = runway(snap, s.Expense)
	s.TopCategory = topCategory(budgetable, snap.Categories)
	s.Categories = categoryUsage(budgetable, snap, month)

	return s
}

// overallLimit returns the month's overall budget record, or the fixed
// fallback when none exists.
func overallLimit(budgets []core.Budget, month core.Month) core.Money {
	for _, b := range budgets {
		if b.CategoryID == nil && b.Month == month {
			return b.Limit
		}
	}
	return DefaultMonthlyBudget
}

// runway is months of all-time balance left at the current month's burn
// rate. Burn of zero yields the NoBurn sentinel; anything above 60 months
// is reported as "60+".
func runway(snap Snapshot, burn core.Money) string {
	if burn.Paise == 0 {
		return NoBurn
	}
	var income, expense core.Money
	for _, t := range snap.Transactions {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	for _, b := range snap.Bills {
		if b.Status == core.BillPaid {
			income = income.Add(b.Total)
		}
	}
	for _, p := range snap.Purchases {
		expense = expense.Add(p.Total)
	}
	for _, a := range snap.Advances {
		expense = expense.Add(a.Amount)
	}
	months := float64(income.Sub(expense).Paise) / float64(burn.Paise)
	if months > 60 {
		return "60+"
	}
	return strconv.Itoa(int(math.Round(months)))
}

// topCategory returns the expense category with the highest budgetable
// spend this month. Ties resolve to the category seen first in input
// order, which keeps the result stable across calls.
func topCategory(budgetable []core.Transaction, categories []core.Category) string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	sums := make(map[string]int64)
	var order []string
	for _, t := range budgetable {
		name := Uncategorized
		if t.CategoryID != nil {
			if n, ok := names[*t.CategoryID]; ok {
				name = n
			}
		}
		if _, seen := sums[name]; !seen {
			order = append(order, name)
		}
		sums[name] += t.Amount.Paise
	}

	var top string
	var max int64
	for _, name := range order {
		if sums[name] > max {
			max = sums[name]
			top = name
		}
	}
	return top
}

// categoryUsage computes the per-category budget lines for every expense
// category, including ones with no spend this month.
func categoryUsage(budgetable []core.Transaction, snap Snapshot, month core.Month) []CategoryUsage {
	used := make(map[int64]int64)
	for _, t := range budgetable {
		if t.CategoryID != nil {
			used[*t.CategoryID] += t.Amount.Paise
		}
	}
	limits := make(map[int64]int64)
	for _, b := range snap.Budgets {
		if b.CategoryID != nil && b.Month == month {
			limits[*b.CategoryID] = b.Limit.Paise
		}
	}

	var out []CategoryUsage
	for _, c := range snap.Categories {
		if c.Kind != core.Expense {
			continue
		}
		cu := CategoryUsage{
			Name:  c.Name,
			Limit: core.Money{Paise: limits[c.ID]},
			Used:  core.Money{Paise: used[c.ID]},
		}
		if rem := cu.Limit.Paise - cu.Used.Paise; rem > 0 {
			cu.Remaining = core.Money{Paise: rem}
		}
		cu.Pct = pctOf(cu.Used, cu.Limit, 100)
		out = append(out, cu)
	}
	return out
}

// pctOf is round(100*part/whole) capped at max, defined as 0 when the
// whole is zero.
func pctOf(part, whole core.Money, max int) int {
	if whole.Paise == 0 {
		return 0
	}
	pct := roundPct(part, whole)
	if pct > max {
		return max
	}
	return pct
}

func roundPct(part, whole core.Money) int {
	return int(math.Round(100 * float64(part.Paise) / float64(whole.Paise)))
}
