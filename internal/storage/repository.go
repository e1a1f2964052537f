// Package storage implements the persistent record store over SQLite.
//
// All timestamps are stored as fixed-width UTC strings so that lexicographic
// ordering and range comparisons in SQL match chronological order exactly.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width RFC3339 with nanoseconds, always UTC. Fixed width
// keeps string comparison equivalent to time comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs pending migrations. Foreign keys are enabled so deleting a user
// cascades to their expenses.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// mapConstraintErr translates SQLite unique-constraint violations into the
// domain duplicate errors.
func mapConstraintErr(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.username"):
			return core.ErrDuplicateUsername
		case strings.Contains(msg, "users.email"):
			return core.ErrDuplicateEmail
		}
	}
	return err
}

// CreateUser inserts the user and fills in ID, CreatedAt and UpdatedAt.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	now := time.Now().UTC()

	var email, hash any
	if u.Email != "" {
		email = u.Email
	}
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, salary, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, email, hash, u.Salary.String(), boolToInt(u.IsActive),
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConstraintErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return r.getUserWhere(ctx, "user_id = ?", id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.getUserWhere(ctx, "username = ?", username)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.getUserWhere(ctx, "email = ?", email)
}

func (r *SQLiteRepository) getUserWhere(ctx context.Context, where string, arg any) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, email, password_hash, salary, is_active, created_at, updated_at
		 FROM users WHERE `+where, arg)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*core.User, error) {
	var (
		u           core.User
		email, hash sql.NullString
		salary      string
		active      int64
		created     string
		updated     string
	)
	err := row.Scan(&u.ID, &u.Username, &email, &hash, &salary, &active, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Email = email.String
	u.PasswordHash = hash.String
	u.IsActive = active != 0
	if u.Salary, err = decimal.NewFromString(salary); err != nil {
		return nil, fmt.Errorf("parse stored salary %q: %w", salary, err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse user updated_at: %w", err)
	}
	return &u, nil
}

// UpdateUser persists username, email, password hash, salary and active flag
// and bumps UpdatedAt. The caller is expected to have loaded the record first.
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u *core.User) error {
	now := time.Now().UTC()

	var email, hash any
	if u.Email != "" {
		email = u.Email
	}
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, salary = ?, is_active = ?, updated_at = ?
		 WHERE user_id = ?`,
		u.Username, email, hash, u.Salary.String(), boolToInt(u.IsActive),
		formatTime(now), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", mapConstraintErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	u.UpdatedAt = now
	return nil
}

// DeleteUser removes the user; owned expenses are removed by the cascade.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateExpense inserts the expense and fills in ID and CreatedAt.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, name, amount, category, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Name, e.Amount.String(), string(e.Category), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT expense_id, user_id, name, amount, category, created_at
		 FROM expenses WHERE expense_id = ?`, id)

	var (
		e       core.Expense
		amount  string
		cat     string
		created string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &amount, &cat, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	e.Category = core.Category(cat)
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse expense created_at: %w", err)
	}
	return &e, nil
}

// UpdateExpense persists name, amount and category. Owner and creation time
// are immutable and never touched.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET name = ?, amount = ?, category = ? WHERE expense_id = ?`,
		e.Name, e.Amount.String(), string(e.Category), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE expense_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListExpenses returns the owner's expenses, optionally restricted to a
// resolved time window [start, end) and a category. Ordering is created_at
// ascending with ties broken by expense_id ascending, so repeated queries
// against an unchanged store yield identical sequences.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, window *core.TimeWindow, category *core.Category) ([]core.Expense, error) {
	query := `SELECT expense_id, user_id, name, amount, category, created_at
	          FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if window != nil {
		query += ` AND created_at >= ? AND created_at < ?`
		args = append(args, formatTime(window.Start), formatTime(window.End))
	}
	if category != nil {
		query += ` AND category = ?`
		args = append(args, string(*category))
	}
	query += ` ORDER BY created_at ASC, expense_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e       core.Expense
			amount  string
			cat     string
			created string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &amount, &cat, &created); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		e.Category = core.Category(cat)
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse expense created_at: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
