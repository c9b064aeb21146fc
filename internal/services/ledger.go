package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"avedash/internal/amqp"
	"avedash/internal/core"
	"avedash/internal/store"
)

// IncomeForm carries the caller-supplied fields of an income record.
// Beyond presence checks in the form layer the values are written as-is;
// lenient parsing happens at read time.
type IncomeForm struct {
	IncomeType         string
	PartnerID          string
	Value              string
	AgreementStartDate string
	AgreementEndDate   string
	InvoiceStatus      string
}

// LedgerService issues income write intents. Every write is
// fire-and-forget toward the store: local state is never updated
// optimistically, the subscription round-trip is the only feedback.
type LedgerService struct {
	docs   store.Documents
	events *amqp.Client // nil when AMQP is not configured
	now    func() time.Time
}

func NewLedgerService(docs store.Documents, events *amqp.Client) *LedgerService {
	return &LedgerService{docs: docs, events: events, now: time.Now}
}

// Create stores a new record: lifecycle starts at pending, the invoice
// number and creation timestamp are stamped here and never rewritten.
func (s *LedgerService) Create(ctx context.Context, form IncomeForm) (string, error) {
	now := s.now().UTC()
	invoiceStatus := form.InvoiceStatus
	if invoiceStatus == "" {
		invoiceStatus = string(core.InvoicePending)
	}

	fields := map[string]any{
		store.FieldIncomeType:    form.IncomeType,
		store.FieldPartnerID:     form.PartnerID,
		store.FieldValue:         form.Value,
		store.FieldStartDate:     form.AgreementStartDate,
		store.FieldEndDate:       form.AgreementEndDate,
		store.FieldInvoiceNumber: core.NewInvoiceNumber(now),
		store.FieldInvoiceStatus: invoiceStatus,
		store.FieldStatus:        string(core.StatusPending),
		store.FieldCreatedAt:     now.Format(time.RFC3339),
	}

	id, err := s.docs.Upsert(ctx, store.Income, "", fields)
	if err != nil {
		return "", fmt.Errorf("create income record: %w", err)
	}
	s.publish(ctx, id, amqp.ActionCreated)
	return id, nil
}

// Update merges the supplied fields into the record. InvoiceNumber,
// CreatedAt and the lifecycle status are deliberately not among them.
func (s *LedgerService) Update(ctx context.Context, id string, form IncomeForm) error {
	fields := map[string]any{
		store.FieldIncomeType: form.IncomeType,
		store.FieldPartnerID:  form.PartnerID,
		store.FieldValue:      form.Value,
		store.FieldStartDate:  form.AgreementStartDate,
		store.FieldEndDate:    form.AgreementEndDate,
	}
	if form.InvoiceStatus != "" {
		fields[store.FieldInvoiceStatus] = form.InvoiceStatus
	}

	if _, err := s.docs.Upsert(ctx, store.Income, id, fields); err != nil {
		return fmt.Errorf("update income record %s: %w", id, err)
	}
	s.publish(ctx, id, amqp.ActionUpdated)
	return nil
}

// Validate posts a record. The transition is unconditional, so
// re-validating an already posted record is a no-op in effect.
func (s *LedgerService) Validate(ctx context.Context, id string) error {
	fields := map[string]any{store.FieldStatus: string(core.StatusPosted)}
	if _, err := s.docs.Upsert(ctx, store.Income, id, fields); err != nil {
		return fmt.Errorf("validate income record %s: %w", id, err)
	}
	s.publish(ctx, id, amqp.ActionValidated)
	return nil
}

// Delete removes a record unconditionally.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, store.Income, id); err != nil {
		return fmt.Errorf("delete income record %s: %w", id, err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// publish forwards the event to AMQP when configured. A publish failure
// never fails the write that triggered it.
func (s *LedgerService) publish(ctx context.Context, id string, action amqp.Action) {
	if err := s.events.PublishLedgerEvent(ctx, id, action); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event", "record_id", id, "action", action, "error", err)
	}
}
