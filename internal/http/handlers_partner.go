package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"avedash/internal/core"
	"avedash/internal/services"
)

type partnersPageData struct {
	Active    string
	Session   string
	Banner    string
	Customers []core.Partner
	Suppliers []core.Partner
	FormError string
	Form      services.PartnerForm
	FormID    string
}

func (s *Server) partnersPage(state services.State) partnersPageData {
	data := partnersPageData{
		Active:  "partners",
		Session: s.session.UID,
		Banner:  state.Banner,
	}
	for _, p := range state.Partners {
		switch p.Type {
		case core.Supplier:
			data.Suppliers = append(data.Suppliers, p)
		default:
			data.Customers = append(data.Customers, p)
		}
	}
	return data
}

func (s *Server) handlePartners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "partners_page", s.partnersPage(s.dash.State()))
	case http.MethodPost:
		s.handlePartnerSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePartnerSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id := sanitizeInput(r.PostFormValue("id"))
	form := services.PartnerForm{
		Type:         sanitizeInput(r.PostFormValue("type")),
		Name:         sanitizeInput(r.PostFormValue("name")),
		ContactName:  sanitizeInput(r.PostFormValue("contactName")),
		ContactEmail: sanitizeInput(r.PostFormValue("contactEmail")),
		ContactPhone: sanitizeInput(r.PostFormValue("contactPhone")),
	}

	var err error
	if id == "" {
		_, err = s.partners.Create(ctx, form)
	} else {
		err = s.partners.Update(ctx, id, form)
	}
	switch err {
	case nil:
		http.Redirect(w, r, "/partners", http.StatusSeeOther)
	case core.ErrEmptyName, core.ErrInvalidType:
		s.renderPartnerForm(w, r, id, form, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(ctx, "Partner write rejected", "id", id, "error", err)
		s.renderPartnerForm(w, r, id, form, "the store rejected the write; try again", http.StatusBadGateway)
	}
}

func (s *Server) renderPartnerForm(w http.ResponseWriter, r *http.Request, id string, form services.PartnerForm, msg string, status int) {
	data := s.partnersPage(s.dash.State())
	data.Form = form
	data.FormID = id
	data.FormError = msg
	w.WriteHeader(status)
	s.render(w, r, "partners_page", data)
}

// handlePartnerDelete removes a partner without any cascade: income
// records keep their now-dangling reference and show "Unknown".
func (s *Server) handlePartnerDelete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	id := sanitizeInput(r.PostFormValue("id"))
	if id != "" {
		if err := s.partners.Delete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Partner delete rejected", "id", id, "error", err)
		}
	}
	http.Redirect(w, r, "/partners", http.StatusSeeOther)
}
