// Package worker consumes expense events and appends created expenses to the
// external report.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/sheets"
	"budget/internal/storage"
)

// ReportWorker mirrors newly created expenses into the report sheet. Updates
// and deletions are logged and skipped: the report is an append-only journal,
// not a replica.
type ReportWorker struct {
	storage *storage.SQLiteRepository
	report  sheets.ReportWriter
}

func NewReportWorker(storage *storage.SQLiteRepository, report sheets.ReportWriter) *ReportWorker {
	return &ReportWorker{
		storage: storage,
		report:  report,
	}
}

// HandleEvent processes one expense event from the queue.
func (w *ReportWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"expense_id", msg.ExpenseID,
		"action", msg.Action)

	if msg.Action != "created" {
		slog.InfoContext(ctx, "Skipping non-create event", "action", msg.Action)
		return nil
	}

	expense, err := w.storage.GetExpense(ctx, msg.ExpenseID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the event was consumed; nothing to report.
		slog.WarnContext(ctx, "Expense gone before report append", "expense_id", msg.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.report.AppendExpense(ctx, *expense); err != nil {
		return fmt.Errorf("append expense to report: %w", err)
	}

	slog.InfoContext(ctx, "Appended expense to report",
		"expense_id", msg.ExpenseID,
		"user_id", expense.UserID)
	return nil
}
