package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"avedash/internal/services"
)

// handleIncome serves the ledger page and accepts the modal form post.
// A write failure re-renders the form instead of redirecting, so the
// modal stays open and the user can retry.
func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "income_page", s.incomePage(s.dash.State()))
	case http.MethodPost:
		s.handleIncomeSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleIncomeSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id := sanitizeInput(r.PostFormValue("id"))
	form := services.IncomeForm{
		IncomeType:         sanitizeInput(r.PostFormValue("incomeType")),
		PartnerID:          sanitizeInput(r.PostFormValue("partnerId")),
		Value:              sanitizeInput(r.PostFormValue("value")),
		AgreementStartDate: sanitizeInput(r.PostFormValue("agreementStartDate")),
		AgreementEndDate:   sanitizeInput(r.PostFormValue("agreementEndDate")),
		InvoiceStatus:      sanitizeInput(r.PostFormValue("invoiceStatus")),
	}

	// Presence checks only; field contents are stored as supplied.
	if form.IncomeType == "" || form.Value == "" || form.AgreementStartDate == "" {
		s.renderIncomeForm(w, r, id, form, "income type, value and agreement start date are required", http.StatusBadRequest)
		return
	}

	var err error
	if id == "" {
		_, err = s.ledger.Create(ctx, form)
	} else {
		err = s.ledger.Update(ctx, id, form)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Income write rejected", "id", id, "error", err)
		s.renderIncomeForm(w, r, id, form, "the store rejected the write; try again", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/income", http.StatusSeeOther)
}

func (s *Server) renderIncomeForm(w http.ResponseWriter, r *http.Request, id string, form services.IncomeForm, msg string, status int) {
	data := s.incomePage(s.dash.State())
	data.Form = form
	data.FormID = id
	data.FormError = msg
	w.WriteHeader(status)
	s.render(w, r, "income_page", data)
}

// handleIncomeValidate posts a record: pending -> posted, one way.
func (s *Server) handleIncomeValidate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	id := sanitizeInput(r.PostFormValue("id"))
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	if err := s.ledger.Validate(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Income validation rejected", "id", id, "error", err)
		http.Error(w, "validation failed", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/income", http.StatusSeeOther)
}

// handleIncomeDelete removes a record unconditionally. Delete has no
// distinct success path to skip, so it always redirects.
func (s *Server) handleIncomeDelete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	id := sanitizeInput(r.PostFormValue("id"))
	if id != "" {
		if err := s.ledger.Delete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Income delete rejected", "id", id, "error", err)
		}
	}
	http.Redirect(w, r, "/income", http.StatusSeeOther)
}
