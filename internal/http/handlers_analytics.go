package http

import (
	"net/http"
)

func (s *Server) handleSummaryByCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	query := r.URL.Query()
	summary, err := s.expenses.SummaryByCategory(r.Context(), callerID(r), userID,
		query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSummaryByMonth(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	summary, err := s.expenses.SummaryByMonth(r.Context(), callerID(r), userID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
