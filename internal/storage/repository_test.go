package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, username string) *core.User {
	t.Helper()
	u := &core.User{
		Username: username,
		Email:    username + "@example.com",
		Salary:   decimal.RequireFromString("75000"),
		IsActive: true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.Salary.Equal(decimal.RequireFromString("75000")))
	assert.True(t, got.IsActive)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestGetUserNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateUserDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "alice")

	dup := &core.User{Username: "alice", Salary: decimal.Zero}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), core.ErrDuplicateUsername)

	dupEmail := &core.User{Username: "bob", Email: "alice@example.com", Salary: decimal.Zero}
	assert.ErrorIs(t, repo.CreateUser(ctx, dupEmail), core.ErrDuplicateEmail)
}

func TestUpdateUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	u.Salary = decimal.RequireFromString("80000.50")
	u.Username = "alice2"
	require.NoError(t, repo.UpdateUser(ctx, u))

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.True(t, got.Salary.Equal(decimal.RequireFromString("80000.50")))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestDeleteUserCascadesExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	e := &core.Expense{UserID: u.ID, Name: "Groceries", Amount: decimal.RequireFromString("50"), Category: core.CategoryFood}
	require.NoError(t, repo.CreateExpense(ctx, e))

	require.NoError(t, repo.DeleteUser(ctx, u.ID))

	_, err := repo.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteUser(ctx, u.ID), core.ErrNotFound)
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	e := &core.Expense{UserID: u.ID, Name: "Groceries", Amount: decimal.RequireFromString("250.75"), Category: core.CategoryFood}
	require.NoError(t, repo.CreateExpense(ctx, e))
	assert.NotZero(t, e.ID)

	got, err := repo.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("250.75")))
	assert.Equal(t, core.CategoryFood, got.Category)

	got.Name = "Weekly groceries"
	got.Amount = decimal.RequireFromString("260")
	got.Category = core.CategoryOther
	require.NoError(t, repo.UpdateExpense(ctx, got))

	again, err := repo.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly groceries", again.Name)
	assert.Equal(t, core.CategoryOther, again.Category)

	require.NoError(t, repo.DeleteExpense(ctx, e.ID))
	_, err = repo.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, e.ID), core.ErrNotFound)
}

func TestListExpensesOrderingAndFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	other := seedUser(t, repo, "bob")

	names := []string{"first", "second", "third"}
	cats := []core.Category{core.CategoryFood, core.CategoryTransport, core.CategoryFood}
	for i, name := range names {
		e := &core.Expense{UserID: u.ID, Name: name, Amount: decimal.RequireFromString("10"), Category: cats[i]}
		require.NoError(t, repo.CreateExpense(ctx, e))
	}
	require.NoError(t, repo.CreateExpense(ctx, &core.Expense{
		UserID: other.ID, Name: "not mine", Amount: decimal.RequireFromString("5"), Category: core.CategoryOther,
	}))

	all, err := repo.ListExpenses(ctx, u.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, name := range names {
		assert.Equal(t, name, all[i].Name)
	}
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)

	food := core.CategoryFood
	filtered, err := repo.ListExpenses(ctx, u.ID, nil, &food)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "first", filtered[0].Name)
	assert.Equal(t, "third", filtered[1].Name)
}

func TestListExpensesWindowIsHalfOpen(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	e := &core.Expense{UserID: u.ID, Name: "lunch", Amount: decimal.RequireFromString("12"), Category: core.CategoryFood}
	require.NoError(t, repo.CreateExpense(ctx, e))

	day := e.CreatedAt.Truncate(24 * time.Hour)
	inside := &core.TimeWindow{Start: day, End: day.AddDate(0, 0, 1)}
	got, err := repo.ListExpenses(ctx, u.ID, inside, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// a window ending exactly at the creation instant excludes the row
	before := &core.TimeWindow{Start: day.AddDate(0, 0, -1), End: e.CreatedAt}
	got, err = repo.ListExpenses(ctx, u.ID, before, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	after := &core.TimeWindow{Start: day.AddDate(0, 0, 1), End: day.AddDate(0, 0, 2)}
	got, err = repo.ListExpenses(ctx, u.ID, after, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListExpensesEmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)

	u := seedUser(t, repo, "alice")
	got, err := repo.ListExpenses(context.Background(), u.ID, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
