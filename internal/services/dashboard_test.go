package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"avedash/internal/core"
	"avedash/internal/notify"
	"avedash/internal/store/memory"
)

func dashFixture(t *testing.T) (*DashboardService, *LedgerService, *BudgetService, func()) {
	t.Helper()
	mem := memory.New()
	dash := NewDashboardService(mem, core.DefaultWindow(), notify.NewBanner(notify.DefaultTTL))
	ctx, cancel := context.WithCancel(context.Background())
	if err := dash.Start(ctx); err != nil {
		t.Fatal(err)
	}
	ledger := NewLedgerService(mem, nil)
	ledger.now = fixedClock
	budget := NewBudgetService(mem)
	return dash, ledger, budget, func() {
		cancel()
		dash.Stop()
	}
}

// waitFor polls the dashboard state until cond holds or the deadline hits.
func waitFor(t *testing.T, dash *DashboardService, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := dash.State(); cond(st) {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state condition not reached; last state: %+v", dash.State())
	return State{}
}

func TestDashboard_ReflectsWritesThroughSubscription(t *testing.T) {
	dash, ledger, budget, teardown := dashFixture(t)
	defer teardown()
	ctx := context.Background()

	budget.Upsert(ctx, "2025-10", core.ProcurementIncome, "1000")
	budget.Upsert(ctx, "2025-10", core.Consultancy, "500")
	id, err := ledger.Create(ctx, IncomeForm{IncomeType: core.Consultancy, Value: "700", AgreementStartDate: "2025-10-15"})
	if err != nil {
		t.Fatal(err)
	}

	// A pending record stays out of the report but is in the raw ledger.
	st := waitFor(t, dash, func(st State) bool {
		return len(st.Income) == 1 && len(st.Budgets) == 2
	})
	if !st.Report.TotalIncome.IsZero() {
		t.Errorf("pending record counted: TotalIncome = %s", st.Report.TotalIncome)
	}
	if st.Income[0].Status != core.StatusPending {
		t.Errorf("raw ledger record status = %q, want pending", st.Income[0].Status)
	}

	if err := ledger.Validate(ctx, id); err != nil {
		t.Fatal(err)
	}
	st = waitFor(t, dash, func(st State) bool { return !st.Report.TotalIncome.IsZero() })

	if !st.Report.TotalIncome.Equal(dec("700")) {
		t.Errorf("TotalIncome = %s, want 700", st.Report.TotalIncome)
	}
	if !st.Report.TotalBudget.Equal(dec("1500")) {
		t.Errorf("TotalBudget = %s, want 1500", st.Report.TotalBudget)
	}
	if !st.Report.Variance.Equal(dec("-800")) {
		t.Errorf("Variance = %s, want -800", st.Report.Variance)
	}
	oct := st.Report.MonthlySeries[0]
	if oct.Name != "2025-10" || !oct.Income.Equal(dec("700")) || !oct.Budget.Equal(dec("1500")) {
		t.Errorf("2025-10 point = %+v", oct)
	}
}

func TestDashboard_BannerOnLedgerChanges(t *testing.T) {
	dash, ledger, _, teardown := dashFixture(t)
	defer teardown()
	ctx := context.Background()

	// Cold-start snapshots must not trigger a banner.
	waitFor(t, dash, func(st State) bool { return st.Banner == "" })

	if _, err := ledger.Create(ctx, IncomeForm{IncomeType: core.Consultancy, Value: "700", AgreementStartDate: "2025-10-15"}); err != nil {
		t.Fatal(err)
	}
	st := waitFor(t, dash, func(st State) bool { return st.Banner != "" })
	if st.Banner != "New Entry: Consultancy - $700" {
		t.Errorf("banner = %q", st.Banner)
	}

	dash.DismissBanner()
	if st := dash.State(); st.Banner != "" {
		t.Errorf("banner survived dismissal: %q", st.Banner)
	}
}

func TestDashboard_ColdStartDataNotReportedAsNew(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	seed := NewLedgerService(mem, nil)
	seed.now = fixedClock
	if _, err := seed.Create(ctx, IncomeForm{IncomeType: core.Consultancy, Value: "700", AgreementStartDate: "2025-10-15"}); err != nil {
		t.Fatal(err)
	}

	dash := NewDashboardService(mem, core.DefaultWindow(), notify.NewBanner(notify.DefaultTTL))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := dash.Start(runCtx); err != nil {
		t.Fatal(err)
	}
	defer dash.Stop()

	st := waitFor(t, dash, func(st State) bool { return len(st.Income) == 1 })
	if st.Banner != "" {
		t.Errorf("pre-existing data reported as new: %q", st.Banner)
	}
}

func TestDashboard_UpdatesFanOutAndDetach(t *testing.T) {
	dash, ledger, _, teardown := dashFixture(t)
	defer teardown()
	ctx := context.Background()

	updates, detach := dash.Updates()

	if _, err := ledger.Create(ctx, IncomeForm{IncomeType: core.Consultancy, Value: "700", AgreementStartDate: "2025-10-15"}); err != nil {
		t.Fatal(err)
	}

	select {
	case st := <-updates:
		if len(st.Income) == 0 {
			// The first delivery may race the write; take the next one.
			select {
			case st = <-updates:
			case <-time.After(time.Second):
				t.Fatal("no follow-up delivery")
			}
		}
		if len(st.Income) != 1 {
			t.Errorf("delivered state has %d income records, want 1", len(st.Income))
		}
	case <-time.After(time.Second):
		t.Fatal("no state delivered to attached session")
	}

	detach()
	if _, ok := <-updates; ok {
		// Drain any buffered delivery; the channel must end up closed.
		for range updates {
		}
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
