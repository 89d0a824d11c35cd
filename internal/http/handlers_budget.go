package http

import (
	"net/http"

	"budgetly/internal/core"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	amount, ok, err := s.expenses.GetBudget(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := BudgetResponse{Set: ok}
	if ok {
		resp.Budget = &amount
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	amount, err := ParseBudgetRequest(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.expenses.SetBudget(r.Context(), amount); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summaries.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]core.Category{"categories": core.Categories()})
}
