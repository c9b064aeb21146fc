package core

import "testing"

func TestBudgetKey(t *testing.T) {
	tests := []struct {
		name  string
		month string
		typ   string
		want  string
	}{
		{"plain", "2025-10", "Consultancy", "2025-10|Consultancy"},
		{"inner whitespace stripped", "2025-10", "Procurement Income", "2025-10|ProcurementIncome"},
		{"surrounding whitespace stripped", "2026-01", "  Consultancy ", "2026-01|Consultancy"},
		{"tabs stripped", "2026-02", "Procurement\tIncome", "2026-02|ProcurementIncome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BudgetKey(tt.month, tt.typ); got != tt.want {
				t.Errorf("BudgetKey(%q, %q) = %q, want %q", tt.month, tt.typ, got, tt.want)
			}
		})
	}
}

func TestBudgetKey_SameKeyForRewrites(t *testing.T) {
	// Saving the same (month, type) twice must address the same document.
	a := BudgetKey("2025-10", "Procurement Income")
	b := BudgetKey("2025-10", "ProcurementIncome")
	if a != b {
		t.Errorf("keys differ for equivalent categories: %q vs %q", a, b)
	}
}

func TestPartner_Validate(t *testing.T) {
	tests := []struct {
		name    string
		partner Partner
		wantErr error
	}{
		{"valid customer", Partner{Name: "Acme", Type: Customer}, nil},
		{"valid supplier", Partner{Name: "Globex", Type: Supplier}, nil},
		{"empty name", Partner{Name: "  ", Type: Customer}, ErrEmptyName},
		{"bad type", Partner{Name: "Acme", Type: "vendor"}, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.partner.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePartnerName(t *testing.T) {
	partners := []Partner{
		{ID: "p1", Name: "Acme", Type: Customer},
		{ID: "p2", Name: "Globex", Type: Supplier},
	}
	if got := ResolvePartnerName(partners, "p2"); got != "Globex" {
		t.Errorf("ResolvePartnerName(p2) = %q, want Globex", got)
	}
	if got := ResolvePartnerName(partners, "deleted"); got != "Unknown" {
		t.Errorf("ResolvePartnerName(deleted) = %q, want Unknown", got)
	}
	if got := ResolvePartnerName(nil, ""); got != "Unknown" {
		t.Errorf("ResolvePartnerName on empty registry = %q, want Unknown", got)
	}
}
