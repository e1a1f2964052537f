package worker

import (
	"context"
	"path/filepath"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/sheets/memory"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorker(t *testing.T) (*ReportWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	store := memory.New()
	return NewReportWorker(repo, store), repo, store
}

func TestHandleEventAppendsCreatedExpense(t *testing.T) {
	w, repo, store := newWorker(t)
	ctx := context.Background()

	u := &core.User{Username: "alice", Salary: decimal.Zero, IsActive: true}
	require.NoError(t, repo.CreateUser(ctx, u))
	e := &core.Expense{UserID: u.ID, Name: "Groceries", Amount: decimal.RequireFromString("250.75"), Category: core.CategoryFood}
	require.NoError(t, repo.CreateExpense(ctx, e))

	msg := amqp.NewExpenseEventMessage(e.ID, u.ID, "created")
	require.NoError(t, w.HandleEvent(ctx, msg))

	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Groceries", rows[0].Name)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("250.75")))
}

func TestHandleEventSkipsUpdatesAndDeletes(t *testing.T) {
	w, _, store := newWorker(t)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEventMessage(1, 1, "updated")))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEventMessage(1, 1, "deleted")))
	assert.Empty(t, store.Rows())
}

func TestHandleEventMissingExpenseIsNotAnError(t *testing.T) {
	w, _, store := newWorker(t)

	// created event for a row deleted before the consumer caught up
	err := w.HandleEvent(context.Background(), amqp.NewExpenseEventMessage(9999, 1, "created"))
	require.NoError(t, err)
	assert.Empty(t, store.Rows())
}
