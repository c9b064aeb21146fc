package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"avedash/internal/core"
	"avedash/internal/notify"
	"avedash/internal/store"
)

// State is what one delivery to the UI looks like: the latest authoritative
// snapshots, the report derived from them, and the transient banner.
type State struct {
	Partners []core.Partner
	Income   []core.IncomeRecord
	Budgets  []core.BudgetEntry
	Report   core.Report
	Banner   string
}

// DashboardService holds the subscribed-to state of all three collections
// and recomputes the aggregation on every delivery. The subscribed
// snapshot is the single source of truth: writes issued elsewhere become
// visible here only once the store round-trips them.
type DashboardService struct {
	docs     store.Documents
	window   core.FiscalWindow
	notifier *notify.Notifier
	banner   *notify.Banner

	mu       sync.RWMutex
	partners []core.Partner
	income   []core.IncomeRecord
	budgets  []core.BudgetEntry
	report   core.Report

	listeners map[chan State]struct{}

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewDashboardService(docs store.Documents, window core.FiscalWindow, banner *notify.Banner) *DashboardService {
	return &DashboardService{
		docs:      docs,
		window:    window,
		notifier:  notify.NewNotifier(),
		banner:    banner,
		report:    core.Aggregate(nil, nil, window),
		listeners: make(map[chan State]struct{}),
	}
}

// Start subscribes to the three collections and runs one pump per
// subscription. A pump that sees its channel close simply exits; the
// collection stops updating and no retry is attempted.
func (s *DashboardService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	partnersCh, err := s.docs.Subscribe(ctx, store.Partners)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe partners: %w", err)
	}
	incomeCh, err := s.docs.Subscribe(ctx, store.Income)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe income: %w", err)
	}
	budgetsCh, err := s.docs.Subscribe(ctx, store.Budgets)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe budgets: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.pump(gctx, store.Partners, partnersCh, s.applyPartners) })
	g.Go(func() error { return s.pump(gctx, store.Income, incomeCh, s.applyIncome) })
	g.Go(func() error { return s.pump(gctx, store.Budgets, budgetsCh, s.applyBudgets) })
	s.group = g

	slog.InfoContext(ctx, "Dashboard service started",
		"window_start", s.window.Start.Format("2006-01-02"),
		"window_end", s.window.End.Format("2006-01-02"))
	return nil
}

// Stop detaches the subscriptions and waits for the pumps to drain.
func (s *DashboardService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.group != nil {
		s.group.Wait()
	}
}

func (s *DashboardService) pump(ctx context.Context, c store.Collection, ch <-chan store.Snapshot, apply func(store.Snapshot)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				slog.WarnContext(ctx, "Subscription ended", "collection", c)
				return nil
			}
			apply(snap)
			s.broadcast()
		}
	}
}

func (s *DashboardService) applyPartners(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners = store.DecodePartners(snap.Docs)
}

func (s *DashboardService) applyIncome(snap store.Snapshot) {
	changes := make([]notify.Change, 0, len(snap.Changes))
	for _, c := range snap.Changes {
		rec := store.DecodeIncome(c.Doc)
		nc := notify.Change{IncomeType: rec.IncomeType, Value: rec.Value}
		switch c.Kind {
		case store.Added:
			nc.Kind = notify.Added
		case store.Modified:
			nc.Kind = notify.Modified
		case store.Removed:
			nc.Kind = notify.Removed
		}
		changes = append(changes, nc)
	}

	s.mu.Lock()
	s.income = store.DecodeIncomes(snap.Docs)
	s.report = core.Aggregate(s.income, s.budgets, s.window)
	s.mu.Unlock()

	if msg, ok := s.notifier.Observe(changes); ok {
		s.banner.Show(msg)
	}
}

func (s *DashboardService) applyBudgets(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = store.DecodeBudgets(snap.Docs)
	s.report = core.Aggregate(s.income, s.budgets, s.window)
}

// State returns the current authoritative view.
func (s *DashboardService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	banner, _ := s.banner.Current()
	return State{
		Partners: append([]core.Partner(nil), s.partners...),
		Income:   append([]core.IncomeRecord(nil), s.income...),
		Budgets:  append([]core.BudgetEntry(nil), s.budgets...),
		Report:   s.report,
		Banner:   banner,
	}
}

// Window returns the configured fiscal window.
func (s *DashboardService) Window() core.FiscalWindow {
	return s.window
}

// DismissBanner clears the transient notification ahead of its expiry.
func (s *DashboardService) DismissBanner() {
	s.banner.Dismiss()
	s.broadcast()
}

// Updates attaches a UI session. The returned detach func must be called
// on teardown so no callback leaks against a stale session.
func (s *DashboardService) Updates() (<-chan State, func()) {
	ch := make(chan State, 8)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()

	detach := func() {
		s.mu.Lock()
		if _, ok := s.listeners[ch]; ok {
			delete(s.listeners, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, detach
}

// broadcast fans the current state out to every attached session. A slow
// session drops the delivery; the next one carries full state anyway.
func (s *DashboardService) broadcast() {
	state := s.State()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.listeners {
		select {
		case ch <- state:
		default:
		}
	}
}
