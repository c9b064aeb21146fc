package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"avedash/internal/core"
)

type budgetCell struct {
	Month string
	Type  string
	Value string
}

type budgetGridRow struct {
	Month string
	Cells []budgetCell
}

// budgetGrid lays the plan out as window months x categories, with any
// extra categories found in stored entries appended after the fixed ones.
func budgetGrid(entries []core.BudgetEntry, window core.FiscalWindow) (types []string, rows []budgetGridRow) {
	types = []string{core.ProcurementIncome, core.Consultancy}
	known := map[string]bool{core.ProcurementIncome: true, core.Consultancy: true}
	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		byKey[core.BudgetKey(e.Month, e.Type)] = e.Value
		if !known[e.Type] && e.Type != "" {
			known[e.Type] = true
			types = append(types, e.Type)
		}
	}

	for _, month := range window.MonthKeys() {
		row := budgetGridRow{Month: month}
		for _, typ := range types {
			row.Cells = append(row.Cells, budgetCell{
				Month: month,
				Type:  typ,
				Value: byKey[core.BudgetKey(month, typ)],
			})
		}
		rows = append(rows, row)
	}
	return types, rows
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	state := s.dash.State()
	types, rows := budgetGrid(state.Budgets, s.dash.Window())
	data := struct {
		Active  string
		Session string
		Banner  string
		Types   []string
		Rows    []budgetGridRow
	}{
		Active:  "budget",
		Session: s.session.UID,
		Banner:  state.Banner,
		Types:   types,
		Rows:    rows,
	}
	s.render(w, r, "budget_page", data)
}

// handleBudgetSave upserts one grid cell by its composite key.
func (s *Server) handleBudgetSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	month := sanitizeInput(r.PostFormValue("month"))
	typ := sanitizeInput(r.PostFormValue("type"))
	value := sanitizeInput(r.PostFormValue("value"))

	if err := s.budget.Upsert(ctx, month, typ, value); err != nil {
		switch err {
		case core.ErrInvalidMonth, core.ErrEmptyIncomeType:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(ctx, "Budget write rejected", "month", month, "type", typ, "error", err)
			http.Error(w, "the store rejected the write; try again", http.StatusBadGateway)
		}
		return
	}
	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}
