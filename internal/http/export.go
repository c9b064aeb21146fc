package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// handleIncomeExport streams the raw ledger as an .xlsx workbook. Every
// record appears regardless of lifecycle status; this is the ledger
// table, not the aggregation.
func (s *Server) handleIncomeExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	state := s.dash.State()
	rows := ledgerRows(state.Income, state.Partners)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Income Ledger"
	index, err := f.NewSheet(sheet)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create export sheet", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := []any{"Invoice", "Type", "Partner", "Value", "Agreement Start", "Agreement End", "Invoice Status", "Status", "Created At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write export header", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			row.InvoiceNumber,
			row.IncomeType,
			row.PartnerName,
			row.Value,
			row.AgreementStartDate,
			row.AgreementEndDate,
			string(row.InvoiceStatus),
			string(row.Status),
			row.CreatedAt,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			slog.ErrorContext(r.Context(), "Failed to write export row", "row", i, "error", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
	}

	filename := fmt.Sprintf("income-ledger-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := f.Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Failed to stream export", "error", err)
	}
}
