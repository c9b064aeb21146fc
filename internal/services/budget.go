package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"avedash/internal/core"
	"avedash/internal/store"
)

// BudgetService upserts monthly target values. Documents are addressed
// by the composite (month, category) key, so re-saving a cell overwrites
// in place rather than duplicating it.
type BudgetService struct {
	docs store.Documents
}

func NewBudgetService(docs store.Documents) *BudgetService {
	return &BudgetService{docs: docs}
}

// Upsert writes one budget cell. Malformed numeric input coerces to 0.
func (s *BudgetService) Upsert(ctx context.Context, month, typ, rawValue string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return core.ErrInvalidMonth
	}
	if strings.TrimSpace(typ) == "" {
		return core.ErrEmptyIncomeType
	}

	fields := map[string]any{
		store.FieldMonth: month,
		store.FieldType:  typ,
		store.FieldValue: core.ParseAmount(rawValue).String(),
	}
	if _, err := s.docs.Upsert(ctx, store.Budgets, core.BudgetKey(month, typ), fields); err != nil {
		return fmt.Errorf("upsert budget %s/%s: %w", month, typ, err)
	}
	return nil
}
