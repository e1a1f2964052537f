// Package core holds the budgeting domain: entities, validation, the time
// window resolver and the budget aggregator. It performs no I/O.
//
// Monetary values are decimal.Decimal end-to-end. Binary floating point is
// never used for amounts, so the sum invariant
// sum(category_breakdown) == total_expense holds exactly.
package core

import "github.com/shopspring/decimal"

// ValidateAmount enforces the strict positivity rule for expense amounts.
// Zero is rejected: a zero-amount expense carries no budget information.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateSalary enforces the non-negativity rule for salaries.
func ValidateSalary(salary decimal.Decimal) error {
	if salary.Sign() < 0 {
		return ErrInvalidSalary
	}
	return nil
}

// SumAmounts returns the exact decimal sum of the expense amounts,
// zero for an empty slice.
func SumAmounts(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
