package services

import (
	"context"
	"path/filepath"
	"testing"

	"budget/internal/core"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	ExpenseID int64
	UserID    int64
	Action    string
}

type capturePublisher struct {
	events []capturedEvent
	err    error
}

func (p *capturePublisher) PublishExpenseEvent(_ context.Context, expenseID, userID int64, action string) error {
	p.events = append(p.events, capturedEvent{ExpenseID: expenseID, UserID: userID, Action: action})
	return p.err
}

func newTestServices(t *testing.T) (*ExpenseService, *UserService, *capturePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	pub := &capturePublisher{}
	return NewExpenseService(repo, pub), NewUserService(repo), pub
}

func registerUser(t *testing.T, users *UserService, username, salary string) *core.User {
	t.Helper()
	u, err := users.Register(context.Background(), username, username+"@example.com",
		"password123", decimal.RequireFromString(salary))
	require.NoError(t, err)
	return u
}

func TestCreateExpense(t *testing.T) {
	expenses, users, pub := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	e, err := expenses.CreateExpense(ctx, u.ID, u.ID, "Groceries",
		decimal.RequireFromString("250.75"), core.CategoryFood)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	require.Len(t, pub.events, 1)
	assert.Equal(t, capturedEvent{ExpenseID: e.ID, UserID: u.ID, Action: "created"}, pub.events[0])
}

func TestCreateExpenseForOtherUserForbidden(t *testing.T) {
	expenses, users, pub := newTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice", "75000")
	bob := registerUser(t, users, "bob", "50000")

	_, err := expenses.CreateExpense(ctx, alice.ID, bob.ID, "Groceries",
		decimal.RequireFromString("10"), core.CategoryFood)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, pub.events)
}

func TestCreateExpenseValidationCollectsAllViolations(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	_, err := expenses.CreateExpense(ctx, u.ID, u.ID, "",
		decimal.RequireFromString("-5"), core.Category("food"))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestGetExpenseOwnership(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice", "75000")
	bob := registerUser(t, users, "bob", "50000")

	e, err := expenses.CreateExpense(ctx, alice.ID, alice.ID, "Lunch",
		decimal.RequireFromString("12"), core.CategoryFood)
	require.NoError(t, err)

	got, err := expenses.GetExpense(ctx, alice.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	// existence is revealed, access is not
	_, err = expenses.GetExpense(ctx, bob.ID, e.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = expenses.GetExpense(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateExpensePartial(t *testing.T) {
	expenses, users, pub := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	e, err := expenses.CreateExpense(ctx, u.ID, u.ID, "Lunch",
		decimal.RequireFromString("12"), core.CategoryFood)
	require.NoError(t, err)

	newAmount := decimal.RequireFromString("14.50")
	updated, err := expenses.UpdateExpense(ctx, u.ID, e.ID, ExpenseUpdate{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, "Lunch", updated.Name)
	assert.True(t, updated.Amount.Equal(newAmount))
	assert.Equal(t, core.CategoryFood, updated.Category)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)

	assert.Equal(t, "updated", pub.events[len(pub.events)-1].Action)
}

func TestUpdateExpenseRejectsInvalidPatch(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	e, err := expenses.CreateExpense(ctx, u.ID, u.ID, "Lunch",
		decimal.RequireFromString("12"), core.CategoryFood)
	require.NoError(t, err)

	bad := decimal.Zero
	_, err = expenses.UpdateExpense(ctx, u.ID, e.ID, ExpenseUpdate{Amount: &bad})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)

	// the stored record is untouched
	got, err := expenses.GetExpense(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12")))
}

func TestDeleteExpense(t *testing.T) {
	expenses, users, pub := newTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice", "75000")
	bob := registerUser(t, users, "bob", "50000")

	e, err := expenses.CreateExpense(ctx, alice.ID, alice.ID, "Lunch",
		decimal.RequireFromString("12"), core.CategoryFood)
	require.NoError(t, err)

	assert.ErrorIs(t, expenses.DeleteExpense(ctx, bob.ID, e.ID), core.ErrForbidden)
	require.NoError(t, expenses.DeleteExpense(ctx, alice.ID, e.ID))
	assert.Equal(t, "deleted", pub.events[len(pub.events)-1].Action)

	_, err = expenses.GetExpense(ctx, alice.ID, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListExpensesAmbiguousFilter(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	month, year := 6, 2025
	week := 23
	_, err := expenses.ListExpenses(ctx, u.ID, u.ID,
		core.WindowParams{Month: &month, Week: &week, Year: &year}, nil)
	assert.ErrorIs(t, err, core.ErrAmbiguousFilter)
}

func TestListExpensesForOtherUserForbidden(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice", "75000")
	bob := registerUser(t, users, "bob", "50000")

	_, err := expenses.ListExpenses(ctx, alice.ID, bob.ID, core.WindowParams{}, nil)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestSummary(t *testing.T) {
	expenses, users, _ := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	seed := []struct {
		name   string
		amount string
		cat    core.Category
	}{
		{"Groceries", "250.75", core.CategoryFood},
		{"Gas", "50.00", core.CategoryTransport},
		{"Movie", "15.99", core.CategoryEntertainment},
		{"Electricity", "120.50", core.CategoryUtilities},
	}
	for _, e := range seed {
		_, err := expenses.CreateExpense(ctx, u.ID, u.ID, e.name,
			decimal.RequireFromString(e.amount), e.cat)
		require.NoError(t, err)
	}

	sum, err := expenses.Summary(ctx, u.ID, u.ID, core.WindowParams{}, nil)
	require.NoError(t, err)
	assert.True(t, sum.TotalExpense.Equal(decimal.RequireFromString("437.24")))
	assert.True(t, sum.RemainingAmount.Equal(decimal.RequireFromString("74562.76")))
	assert.Len(t, sum.CategoryBreakdown, 5)
	assert.True(t, sum.CategoryBreakdown[core.CategoryOther].IsZero())

	food := core.CategoryFood
	foodSum, err := expenses.Summary(ctx, u.ID, u.ID, core.WindowParams{}, &food)
	require.NoError(t, err)
	assert.True(t, foodSum.TotalExpense.Equal(decimal.RequireFromString("250.75")))
	assert.True(t, foodSum.CategoryBreakdown[core.CategoryTransport].IsZero())
}

func TestPublisherFailureDoesNotFailWrite(t *testing.T) {
	expenses, users, pub := newTestServices(t)
	ctx := context.Background()
	u := registerUser(t, users, "alice", "75000")

	pub.err = assert.AnError
	e, err := expenses.CreateExpense(ctx, u.ID, u.ID, "Lunch",
		decimal.RequireFromString("12"), core.CategoryFood)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
}
