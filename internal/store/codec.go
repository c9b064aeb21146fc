package store

import (
	"fmt"

	"avedash/internal/core"
)

// Field names as stored in the documents. Shared by every backend so
// reads and writes agree.
const (
	FieldType         = "type"
	FieldName         = "name"
	FieldContactName  = "contactName"
	FieldContactEmail = "contactEmail"
	FieldContactPhone = "contactPhone"

	FieldIncomeType    = "incomeType"
	FieldPartnerID     = "partnerId"
	FieldValue         = "value"
	FieldStartDate     = "agreementStartDate"
	FieldEndDate       = "agreementEndDate"
	FieldInvoiceNumber = "invoiceNumber"
	FieldInvoiceStatus = "invoiceStatus"
	FieldStatus        = "status"
	FieldCreatedAt     = "createdAt"

	FieldMonth = "month"
)

func str(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		// Stores with loose typing can hand back numbers here.
		return fmt.Sprintf("%v", v)
	}
}

// DecodePartner maps a stored document onto the domain type. Unknown
// fields are ignored, missing fields decode to their zero value.
func DecodePartner(d Document) core.Partner {
	return core.Partner{
		ID:           d.ID,
		Type:         core.PartnerType(str(d.Fields, FieldType)),
		Name:         str(d.Fields, FieldName),
		ContactName:  str(d.Fields, FieldContactName),
		ContactEmail: str(d.Fields, FieldContactEmail),
		ContactPhone: str(d.Fields, FieldContactPhone),
	}
}

func DecodeIncome(d Document) core.IncomeRecord {
	return core.IncomeRecord{
		ID:                 d.ID,
		IncomeType:         str(d.Fields, FieldIncomeType),
		PartnerID:          str(d.Fields, FieldPartnerID),
		Value:              str(d.Fields, FieldValue),
		AgreementStartDate: str(d.Fields, FieldStartDate),
		AgreementEndDate:   str(d.Fields, FieldEndDate),
		InvoiceNumber:      str(d.Fields, FieldInvoiceNumber),
		InvoiceStatus:      core.InvoiceStatus(str(d.Fields, FieldInvoiceStatus)),
		Status:             core.RecordStatus(str(d.Fields, FieldStatus)),
		CreatedAt:          str(d.Fields, FieldCreatedAt),
	}
}

func DecodeBudget(d Document) core.BudgetEntry {
	return core.BudgetEntry{
		ID:    d.ID,
		Month: str(d.Fields, FieldMonth),
		Type:  str(d.Fields, FieldType),
		Value: str(d.Fields, FieldValue),
	}
}

// DecodePartners maps a snapshot's documents in delivery order.
func DecodePartners(docs []Document) []core.Partner {
	out := make([]core.Partner, 0, len(docs))
	for _, d := range docs {
		out = append(out, DecodePartner(d))
	}
	return out
}

func DecodeIncomes(docs []Document) []core.IncomeRecord {
	out := make([]core.IncomeRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, DecodeIncome(d))
	}
	return out
}

func DecodeBudgets(docs []Document) []core.BudgetEntry {
	out := make([]core.BudgetEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, DecodeBudget(d))
	}
	return out
}
