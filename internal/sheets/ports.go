// Package sheets defines the outbound report ports implemented by the Google
// Sheets adapter and the in-memory fake.
package sheets

import (
	"context"

	"budget/internal/core"
)

// ReportWriter appends expense rows to the report destination.
type ReportWriter interface {
	AppendExpense(ctx context.Context, e core.Expense) error
}
