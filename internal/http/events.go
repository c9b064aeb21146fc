package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"avedash/internal/services"
)

// Wire shapes for the event stream. Decimals travel as strings so the
// client never re-parses floats.
type (
	typeTotalView struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	monthPointView struct {
		Name   string `json:"name"`
		Income string `json:"income"`
		Budget string `json:"budget"`
	}
	reportView struct {
		IncomeByType  []typeTotalView  `json:"incomeByType"`
		MonthlySeries []monthPointView `json:"monthlySeries"`
		TotalIncome   string           `json:"totalIncome"`
		TotalBudget   string           `json:"totalBudget"`
		Variance      string           `json:"variance"`
	}
	stateView struct {
		Report reportView `json:"report"`
		Banner string     `json:"banner"`
	}
)

func viewOf(state services.State) stateView {
	v := stateView{Banner: state.Banner}
	v.Report = reportView{
		TotalIncome:   state.Report.TotalIncome.String(),
		TotalBudget:   state.Report.TotalBudget.String(),
		Variance:      state.Report.Variance.String(),
		IncomeByType:  make([]typeTotalView, 0, len(state.Report.IncomeByType)),
		MonthlySeries: make([]monthPointView, 0, len(state.Report.MonthlySeries)),
	}
	for _, t := range state.Report.IncomeByType {
		v.Report.IncomeByType = append(v.Report.IncomeByType, typeTotalView{Name: t.Name, Value: t.Value.String()})
	}
	for _, p := range state.Report.MonthlySeries {
		v.Report.MonthlySeries = append(v.Report.MonthlySeries, monthPointView{
			Name:   p.Name,
			Income: p.Income.String(),
			Budget: p.Budget.String(),
		})
	}
	return v
}

// handleEvents streams dashboard state over SSE. Each connected session
// gets the current state immediately, then every change as it lands, and
// a periodic tick so banner expiry reaches the client without a data
// change. The subscription detaches when the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, detach := s.dash.Updates()
	defer detach()

	send := func(state services.State) bool {
		payload, err := json.Marshal(viewOf(state))
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to encode state", "error", err)
			return false
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return false
		}
		if _, err := w.Write(payload); err != nil {
			return false
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.dash.State()) {
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-updates:
			if !open {
				return
			}
			if !send(state) {
				return
			}
		case <-ticker.C:
			if !send(s.dash.State()) {
				return
			}
		}
	}
}
