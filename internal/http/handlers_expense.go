package http

import (
	"fmt"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
)

// parseUserID parses the {user_id} path segment.
func parseUserID(r *http.Request) (int64, error) {
	raw := r.PathValue("user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", core.ErrInvalidInput, raw)
	}
	return id, nil
}

func (s *Server) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	expenses, err := s.expenses.GetExpensesForDate(r.Context(), callerID(r), userID, r.PathValue("date"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleReplaceExpenses(w http.ResponseWriter, r *http.Request) {
	var batch []core.Expense
	if err := decodeJSON(r, &batch); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	count, err := s.expenses.ReplaceExpensesForDate(r.Context(), callerID(r), r.PathValue("date"), batch)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Expenses updated successfully",
		"count":   count,
	})
}
