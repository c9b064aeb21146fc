package core

import (
	"errors"
	"strings"
)

const (
	Customer PartnerType = "customer"
	Supplier PartnerType = "supplier"
)

const (
	StatusPending RecordStatus = "pending"
	StatusPosted  RecordStatus = "posted"
)

const (
	InvoicePending InvoiceStatus = "pending"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

const (
	ProcurementIncome = "Procurement Income"
	Consultancy       = "Consultancy"
)

type (
	PartnerType   string
	RecordStatus  string
	InvoiceStatus string

	// Partner is a customer or supplier record. Income records reference
	// partners by id only; deleting a partner leaves those references
	// dangling and they resolve to "Unknown" at display time.
	Partner struct {
		ID           string
		Type         PartnerType
		Name         string
		ContactName  string
		ContactEmail string
		ContactPhone string
	}

	// IncomeRecord mirrors the stored document: the monetary value and the
	// agreement dates stay raw strings and are parsed leniently only where
	// they are used. InvoiceNumber and CreatedAt are set once at creation
	// and never rewritten; Status only ever moves pending -> posted.
	IncomeRecord struct {
		ID                 string
		IncomeType         string
		PartnerID          string
		Value              string
		AgreementStartDate string
		AgreementEndDate   string
		InvoiceNumber      string
		InvoiceStatus      InvoiceStatus
		Status             RecordStatus
		CreatedAt          string
	}

	// BudgetEntry holds one target value for a (month, category) pair.
	BudgetEntry struct {
		ID    string
		Month string // YYYY-MM
		Type  string
		Value string
	}
)

var (
	ErrEmptyName       = errors.New("empty partner name")
	ErrInvalidType     = errors.New("invalid partner type")
	ErrEmptyIncomeType = errors.New("empty income type")
	ErrInvalidMonth    = errors.New("invalid month key")
)

func (p Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	switch p.Type {
	case Customer, Supplier:
	default:
		return ErrInvalidType
	}
	return nil
}

// Posted reports whether the record counts toward aggregation.
func (r IncomeRecord) Posted() bool {
	return r.Status == StatusPosted
}

// BudgetKey is the storage contract for budget documents: the composite
// document id is the month key and the category joined by "|", with all
// whitespace stripped from the category. Reads and writes must both use
// this encoding so re-saving the same (month, type) overwrites in place.
func BudgetKey(month, typ string) string {
	return month + "|" + strings.Join(strings.Fields(typ), "")
}

func (b BudgetEntry) Key() string {
	return BudgetKey(b.Month, b.Type)
}

// ResolvePartnerName looks up a weak partner reference. Missing ids are
// not an error; they render as "Unknown".
func ResolvePartnerName(partners []Partner, id string) string {
	for _, p := range partners {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown"
}
