package core

import "github.com/shopspring/decimal"

// Summary is the budget view over a filtered expense set. CategoryBreakdown
// always contains every category, zero-valued when absent from the input, so
// the output shape is stable for clients.
type Summary struct {
	UserID            int64
	TotalSalary       decimal.Decimal
	TotalExpense      decimal.Decimal
	RemainingAmount   decimal.Decimal
	CategoryBreakdown map[Category]decimal.Decimal
}

// Aggregate reduces a filtered expense set plus the user's salary into
// totals and a per-category breakdown. It is deterministic, side-effect free
// and recomputed on every call; summaries are never cached or materialized.
// RemainingAmount is signed: overspending is not an error condition.
func Aggregate(userID int64, salary decimal.Decimal, expenses []Expense) Summary {
	breakdown := make(map[Category]decimal.Decimal, len(Categories()))
	for _, c := range Categories() {
		breakdown[c] = decimal.Zero
	}

	for _, e := range expenses {
		breakdown[e.Category] = breakdown[e.Category].Add(e.Amount)
	}
	total := SumAmounts(expenses)

	return Summary{
		UserID:            userID,
		TotalSalary:       salary,
		TotalExpense:      total,
		RemainingAmount:   salary.Sub(total),
		CategoryBreakdown: breakdown,
	}
}
