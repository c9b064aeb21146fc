package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// FiscalWindow is the inclusive reporting period all aggregation is
	// computed against, in UTC calendar days.
	FiscalWindow struct {
		Start time.Time
		End   time.Time
	}

	// TypeTotal is the posted income summed for one income type.
	TypeTotal struct {
		Name  string
		Value decimal.Decimal
	}

	// MonthPoint carries the two parallel series values for one month key.
	MonthPoint struct {
		Name   string // YYYY-MM
		Income decimal.Decimal
		Budget decimal.Decimal
	}

	// Report is the full output of one aggregation pass.
	Report struct {
		IncomeByType  []TypeTotal
		MonthlySeries []MonthPoint
		TotalIncome   decimal.Decimal
		TotalBudget   decimal.Decimal
		Variance      decimal.Decimal
	}
)

// DefaultWindow is the fiscal year the dashboard ships configured for.
func DefaultWindow() FiscalWindow {
	return FiscalWindow{
		Start: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether d falls within the window, inclusive on both
// bounds.
func (w FiscalWindow) Contains(d time.Time) bool {
	d = d.UTC().Truncate(24 * time.Hour)
	return !d.Before(w.Start) && !d.After(w.End)
}

// MonthKeys expands the window into its ordered sequence of YYYY-MM keys,
// stepping by whole UTC months from Start to End inclusive.
func (w FiscalWindow) MonthKeys() []string {
	var keys []string
	cur := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(w.End.Year(), w.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		keys = append(keys, MonthKey(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return keys
}

// Aggregate turns the raw ledger and budget plan into the dashboard
// figures. It is a pure function of its inputs: identical inputs always
// produce identical output, so it is recomputed wholesale on every
// snapshot delivery.
//
// An income record participates only if its lifecycle status is posted
// and its agreement start date parses to a day inside the window. Records
// failing either check are excluded from every figure here but remain
// untouched in the raw ledger.
func Aggregate(records []IncomeRecord, budgets []BudgetEntry, w FiscalWindow) Report {
	months := w.MonthKeys()
	inWindow := make(map[string]bool, len(months))
	for _, m := range months {
		inWindow[m] = true
	}

	incomeByMonth := make(map[string]decimal.Decimal, len(months))
	budgetByMonth := make(map[string]decimal.Decimal, len(months))

	// By-type groups keep first-seen order.
	var typeOrder []string
	typeTotals := make(map[string]decimal.Decimal)

	for _, r := range records {
		start, ok := ParseDate(r.AgreementStartDate)
		if !ok || !w.Contains(start) || !r.Posted() {
			continue
		}
		v := ParseAmount(r.Value)

		name := r.IncomeType
		if name == "" {
			name = "Uncategorized"
		}
		if _, seen := typeTotals[name]; !seen {
			typeOrder = append(typeOrder, name)
		}
		typeTotals[name] = typeTotals[name].Add(v)

		mk := MonthKey(start)
		incomeByMonth[mk] = incomeByMonth[mk].Add(v)
	}

	for _, b := range budgets {
		if !inWindow[b.Month] {
			continue
		}
		budgetByMonth[b.Month] = budgetByMonth[b.Month].Add(ParseAmount(b.Value))
	}

	rep := Report{
		TotalIncome: decimal.Zero,
		TotalBudget: decimal.Zero,
	}
	for _, name := range typeOrder {
		rep.IncomeByType = append(rep.IncomeByType, TypeTotal{Name: name, Value: typeTotals[name]})
	}
	for _, m := range months {
		inc := incomeByMonth[m]
		bud := budgetByMonth[m]
		rep.MonthlySeries = append(rep.MonthlySeries, MonthPoint{Name: m, Income: inc, Budget: bud})
		rep.TotalIncome = rep.TotalIncome.Add(inc)
		rep.TotalBudget = rep.TotalBudget.Add(bud)
	}
	rep.Variance = rep.TotalIncome.Sub(rep.TotalBudget)
	return rep
}
