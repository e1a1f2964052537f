package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budget/internal/core"

	"github.com/shopspring/decimal"
)

// Error bodies carry a "detail" member: a string for simple failures, a list
// of field violations for body validation failures.
type (
	errorResponse struct {
		Detail any `json:"detail"`
	}

	fieldViolation struct {
		Loc  []string `json:"loc"`
		Msg  string   `json:"msg"`
		Type string   `json:"type"`
	}
)

type (
	userResponse struct {
		ID        int64           `json:"user_id"`
		Username  string          `json:"username"`
		Email     string          `json:"email,omitempty"`
		Salary    decimal.Decimal `json:"salary"`
		IsActive  bool            `json:"is_active"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}

	expenseResponse struct {
		ID        int64           `json:"expense_id"`
		UserID    int64           `json:"user_id"`
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		Category  core.Category   `json:"category"`
		CreatedAt time.Time       `json:"created_at"`
	}

	summaryResponse struct {
		UserID            int64                      `json:"user_id"`
		TotalSalary       decimal.Decimal            `json:"total_salary"`
		TotalExpense      decimal.Decimal            `json:"total_expense"`
		RemainingAmount   decimal.Decimal            `json:"remaining_amount"`
		CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
	}

	tokenResponse struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
)

func toUserResponse(u *core.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Salary:    u.Salary,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toExpenseResponse(e *core.Expense) expenseResponse {
	return expenseResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Name:      e.Name,
		Amount:    e.Amount,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
}

func toSummaryResponse(s *core.Summary) summaryResponse {
	breakdown := make(map[string]decimal.Decimal, len(s.CategoryBreakdown))
	for c, v := range s.CategoryBreakdown {
		breakdown[string(c)] = v
	}
	return summaryResponse{
		UserID:            s.UserID,
		TotalSalary:       s.TotalSalary,
		TotalExpense:      s.TotalExpense,
		RemainingAmount:   s.RemainingAmount,
		CategoryBreakdown: breakdown,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses and a detail body.
func writeError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		violations := make([]fieldViolation, len(verr.Fields))
		for i, f := range verr.Fields {
			violations[i] = fieldViolation{
				Loc:  []string{"body", f.Field},
				Msg:  f.Err.Error(),
				Type: "value_error",
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: violations})
		return
	}

	switch {
	case errors.Is(err, core.ErrAmbiguousFilter):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, core.ErrMissingYear),
		errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidCategory):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	case errors.Is(err, core.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: err.Error()})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: "Not authorized to access this resource"})
	case errors.Is(err, core.ErrInactiveUser):
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Resource not found"})
	case errors.Is(err, core.ErrDuplicateUsername),
		errors.Is(err, core.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	default:
		slog.Error("Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: msg})
}
