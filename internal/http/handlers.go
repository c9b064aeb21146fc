package http

import (
	"net/http"

	"avedash/internal/core"
	"avedash/internal/services"
)

// handleDashboard renders the main dashboard page: three KPIs, the
// income-vs-budget monthly chart and the by-type breakdown.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	state := s.dash.State()
	data := struct {
		Active  string
		Session string
		Banner  string
		Report  core.Report
	}{
		Active:  "dashboard",
		Session: s.session.UID,
		Banner:  state.Banner,
		Report:  state.Report,
	}
	s.render(w, r, "dashboard_page", data)
}

// handleBannerDismiss clears the transient notification.
func (s *Server) handleBannerDismiss(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.dash.DismissBanner()
	w.WriteHeader(http.StatusNoContent)
}

type incomePageData struct {
	Active      string
	Session     string
	Banner      string
	Rows        []ledgerRow
	Partners    []core.Partner
	IncomeTypes []string
	FormError   string
	Form        services.IncomeForm
	FormID      string
}

func (s *Server) incomePage(state services.State) incomePageData {
	return incomePageData{
		Active:      "income",
		Session:     s.session.UID,
		Banner:      state.Banner,
		Rows:        ledgerRows(state.Income, state.Partners),
		Partners:    state.Partners,
		IncomeTypes: []string{core.ProcurementIncome, core.Consultancy},
	}
}
