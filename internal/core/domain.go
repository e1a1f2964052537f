package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a closed set of expense categories. Values arriving at the
// boundary are validated with ParseCategory; past that point an invalid
// Category is a programming error.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// Categories returns all categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryOther,
	}
}

var (
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrInvalidSalary     = errors.New("salary must be non-negative")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name too long (max 200 characters)")
	ErrInvalidUsername   = errors.New("username must be 3-100 characters")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrAmbiguousFilter   = errors.New("at most one of day, week and month may be set")
	ErrMissingYear       = errors.New("year is required when filtering by week or month")
	ErrInvalidValue      = errors.New("invalid filter value")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrUnauthenticated   = errors.New("invalid credentials")
	ErrInactiveUser      = errors.New("user account is inactive")
)

type (
	// User owns a salary and a set of expenses. It is mutated and deleted
	// only by its own principal.
	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		Salary       decimal.Decimal
		IsActive     bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Expense is a single spend recorded against a user's budget. UserID and
	// CreatedAt are immutable after creation; CreatedAt is the sole temporal
	// anchor for time-window filtering.
	Expense struct {
		ID        int64
		UserID    int64
		Name      string
		Amount    decimal.Decimal
		Category  Category
		CreatedAt time.Time
	}
)

// ParseCategory validates a raw category string (case-sensitive exact match).
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// FieldError ties a validation failure to the offending field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationError aggregates all field-level violations found in a request
// body so the caller can surface them together.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

// orNil returns nil when no violations were collected.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate enforces the expense write invariants: non-empty name, strictly
// positive amount, category in the fixed set.
func (e Expense) Validate() error {
	var verr ValidationError
	if len(strings.TrimSpace(e.Name)) == 0 {
		verr.add("name", ErrEmptyName)
	} else if len(e.Name) > 200 {
		verr.add("name", ErrNameTooLong)
	}
	if err := ValidateAmount(e.Amount); err != nil {
		verr.add("amount", err)
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		verr.add("category", ErrInvalidCategory)
	}
	return verr.orNil()
}

// Validate enforces the user write invariants. Password rules apply only at
// registration and password change; the stored hash is never validated here.
func (u User) Validate() error {
	var verr ValidationError
	name := strings.TrimSpace(u.Username)
	if len(name) < 3 || len(name) > 100 {
		verr.add("username", ErrInvalidUsername)
	}
	if err := ValidateSalary(u.Salary); err != nil {
		verr.add("salary", err)
	}
	return verr.orNil()
}
