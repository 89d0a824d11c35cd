package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetly/internal/core"
	"budgetly/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, core.ValidationReason(err), err.Error())
		return
	}

	all, err := s.expenses.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filtered := core.ApplyFilters(all, filter)
	writeJSON(w, http.StatusOK, ExpenseListResponse{
		Expenses: core.Views(filtered),
		Count:    len(filtered),
		Total:    core.TotalSpent(filtered),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	in, err := ParseExpenseRequest(req, s.expenses.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := s.expenses.Add(r.Context(), in.Amount, in.Category, in.Date, in.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/expenses/"+created.ID)
	writeJSON(w, http.StatusCreated, created.View())
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := s.expenses.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Delete of unknown expense", log.FieldExpenseID, id)
		writeError(w, http.StatusNotFound, "not_found", "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
