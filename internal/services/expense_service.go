// Package services provides business logic and orchestration over storage,
// authorization and messaging.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
)

// EventPublisher emits expense change events for downstream consumers.
// Publishing is best-effort: a failed publish never fails the request.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, expenseID, userID int64, action string) error
}

// ExpenseService orchestrates expense operations across SQLite and AMQP.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewExpenseService(storage *storage.SQLiteRepository, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateExpense records an expense owned by userID. The principal must be the
// owner, the owner must exist and the body must pass validation.
func (s *ExpenseService) CreateExpense(ctx context.Context, principalID, userID int64, name string, amount decimal.Decimal, category core.Category) (*core.Expense, error) {
	if err := authorizeOwner(principalID, userID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	e := &core.Expense{
		UserID:   userID,
		Name:     name,
		Amount:   amount,
		Category: category,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.publishEvent(ctx, e.ID, e.UserID, "created")
	return e, nil
}

// ListExpenses resolves the time filter and returns the principal's expenses,
// oldest first. Filters apply only to the caller's own data.
func (s *ExpenseService) ListExpenses(ctx context.Context, principalID, userID int64, params core.WindowParams, category *core.Category) ([]core.Expense, error) {
	if err := authorizeOwner(principalID, userID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	window, err := core.ResolveWindow(params)
	if err != nil {
		return nil, err
	}

	expenses, err := s.storage.ListExpenses(ctx, userID, window, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense returns a single expense if the principal owns it. A foreign
// expense is reported as forbidden, not as missing.
func (s *ExpenseService) GetExpense(ctx context.Context, principalID, expenseID int64) (*core.Expense, error) {
	e, err := s.storage.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(principalID, e.UserID); err != nil {
		return nil, err
	}
	return e, nil
}

// ExpenseUpdate carries the mutable expense fields; nil means unchanged.
type ExpenseUpdate struct {
	Name     *string
	Amount   *decimal.Decimal
	Category *core.Category
}

// UpdateExpense applies a partial update to an owned expense. Owner and
// creation time are immutable.
func (s *ExpenseService) UpdateExpense(ctx context.Context, principalID, expenseID int64, upd ExpenseUpdate) (*core.Expense, error) {
	e, err := s.storage.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(principalID, e.UserID); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.Amount != nil {
		e.Amount = *upd.Amount
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.publishEvent(ctx, e.ID, e.UserID, "updated")
	return e, nil
}

// DeleteExpense removes an owned expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, principalID, expenseID int64) error {
	e, err := s.storage.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(principalID, e.UserID); err != nil {
		return err
	}

	if err := s.storage.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publishEvent(ctx, expenseID, e.UserID, "deleted")
	return nil
}

// Summary recomputes the budget view over the filtered expense set on every
// call. Nothing is cached.
func (s *ExpenseService) Summary(ctx context.Context, principalID, userID int64, params core.WindowParams, category *core.Category) (*core.Summary, error) {
	if err := authorizeOwner(principalID, userID); err != nil {
		return nil, err
	}
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	window, err := core.ResolveWindow(params)
	if err != nil {
		return nil, err
	}

	expenses, err := s.storage.ListExpenses(ctx, userID, window, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	summary := core.Aggregate(userID, u.Salary, expenses)
	return &summary, nil
}

func (s *ExpenseService) publishEvent(ctx context.Context, expenseID, userID int64, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, expenseID, userID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"expense_id", expenseID, "action", action, "error", err)
		// The write already succeeded locally; the event stream is best-effort.
	}
}
