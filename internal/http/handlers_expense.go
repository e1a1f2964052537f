package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, principalID int64) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}

	e, err := s.expenses.CreateExpense(r.Context(), principalID, req.UserID,
		req.Name, req.Amount, core.Category(req.Category))
	if err != nil {
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, e.ID,
		applog.FieldUserID, e.UserID,
		applog.FieldCategory, string(e.Category),
		applog.FieldAmount, e.Amount.String())
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

// handleListExpenses returns the owner's expenses, oldest first, optionally
// filtered by one of day, week or month plus a category.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, principalID int64) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	params, err := parseWindowParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	category, err := parseCategoryParam(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), principalID, userID, params, category)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request, principalID int64) {
	expenseID, err := parsePathID(r, "expense_id")
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := s.expenses.GetExpense(r.Context(), principalID, expenseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, principalID int64) {
	expenseID, err := parsePathID(r, "expense_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed JSON body")
		return
	}

	upd := services.ExpenseUpdate{
		Name:   req.Name,
		Amount: req.Amount,
	}
	if req.Category != nil {
		c := core.Category(*req.Category)
		upd.Category = &c
	}

	e, err := s.expenses.UpdateExpense(r.Context(), principalID, expenseID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, principalID int64) {
	expenseID, err := parsePathID(r, "expense_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), principalID, expenseID); err != nil {
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted",
		applog.FieldExpenseID, expenseID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary recomputes the budget totals over the same filter surface as
// the list endpoint.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, principalID int64) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	params, err := parseWindowParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	category, err := parseCategoryParam(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := s.expenses.Summary(r.Context(), principalID, userID, params, category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}
