package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"avedash/internal/core"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":      formatMoney,
		"monthLabel": monthLabel,
	}
}

// formatMoney renders a decimal as a dollar amount with two places.
func formatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// monthLabel turns a YYYY-MM key into a short display label.
func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// render executes a page template; template failures are server errors.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// sanitizeInput trims whitespace and strips control characters from form
// values before they are written to the shared store.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// ledgerRow is an income record with its weak partner reference resolved
// for display.
type ledgerRow struct {
	core.IncomeRecord
	PartnerName string
}

func ledgerRows(records []core.IncomeRecord, partners []core.Partner) []ledgerRow {
	rows := make([]ledgerRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ledgerRow{
			IncomeRecord: rec,
			PartnerName:  core.ResolvePartnerName(partners, rec.PartnerID),
		})
	}
	return rows
}
