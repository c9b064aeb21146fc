package services

import (
	"context"
	"fmt"

	"avedash/internal/core"
	"avedash/internal/store"
)

// PartnerForm carries the caller-supplied fields of a partner record.
type PartnerForm struct {
	Type         string
	Name         string
	ContactName  string
	ContactEmail string
	ContactPhone string
}

// PartnerService issues partner registry write intents. Partners are
// referenced weakly from income records, so deletion never cascades and
// never checks for referencing records.
type PartnerService struct {
	docs store.Documents
}

func NewPartnerService(docs store.Documents) *PartnerService {
	return &PartnerService{docs: docs}
}

func (s *PartnerService) Create(ctx context.Context, form PartnerForm) (string, error) {
	if err := validatePartner(form); err != nil {
		return "", err
	}
	id, err := s.docs.Upsert(ctx, store.Partners, "", partnerFields(form))
	if err != nil {
		return "", fmt.Errorf("create partner: %w", err)
	}
	return id, nil
}

func (s *PartnerService) Update(ctx context.Context, id string, form PartnerForm) error {
	if err := validatePartner(form); err != nil {
		return err
	}
	if _, err := s.docs.Upsert(ctx, store.Partners, id, partnerFields(form)); err != nil {
		return fmt.Errorf("update partner %s: %w", id, err)
	}
	return nil
}

func (s *PartnerService) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, store.Partners, id); err != nil {
		return fmt.Errorf("delete partner %s: %w", id, err)
	}
	return nil
}

func validatePartner(form PartnerForm) error {
	p := core.Partner{
		Type: core.PartnerType(form.Type),
		Name: form.Name,
	}
	return p.Validate()
}

func partnerFields(form PartnerForm) map[string]any {
	return map[string]any{
		store.FieldType:         form.Type,
		store.FieldName:         form.Name,
		store.FieldContactName:  form.ContactName,
		store.FieldContactEmail: form.ContactEmail,
		store.FieldContactPhone: form.ContactPhone,
	}
}
