package memory

import (
	"context"
	"testing"
	"time"

	"avedash/internal/store"
)

func recv(t *testing.T, ch <-chan store.Snapshot) store.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return store.Snapshot{}
	}
}

func TestSubscribe_FirstSnapshotFlagged(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Upsert(ctx, store.Income, "", map[string]any{"value": "1"}); err != nil {
		t.Fatal(err)
	}

	ch, err := s.Subscribe(ctx, store.Income)
	if err != nil {
		t.Fatal(err)
	}
	snap := recv(t, ch)
	if !snap.First {
		t.Error("initial snapshot not flagged First")
	}
	if len(snap.Docs) != 1 {
		t.Errorf("initial snapshot has %d docs, want 1", len(snap.Docs))
	}
	if len(snap.Changes) != 0 {
		t.Errorf("initial snapshot carries %d changes, want 0", len(snap.Changes))
	}
}

func TestUpsert_FansOutToAllSubscribers(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	a, _ := s.Subscribe(ctx, store.Income)
	b, _ := s.Subscribe(ctx, store.Income)
	recv(t, a)
	recv(t, b)

	id, err := s.Upsert(ctx, store.Income, "", map[string]any{"incomeType": "Consultancy", "value": "700"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Upsert did not assign an id")
	}

	for _, ch := range []<-chan store.Snapshot{a, b} {
		snap := recv(t, ch)
		if snap.First {
			t.Error("write snapshot flagged First")
		}
		if len(snap.Changes) != 1 || snap.Changes[0].Kind != store.Added {
			t.Fatalf("changes = %+v, want one Added", snap.Changes)
		}
		if snap.Changes[0].Doc.ID != id {
			t.Errorf("change doc id = %q, want %q", snap.Changes[0].Doc.ID, id)
		}
	}
}

func TestUpsert_MergesAndClassifiesModified(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	id, _ := s.Upsert(ctx, store.Income, "", map[string]any{"incomeType": "Consultancy", "status": "pending"})

	ch, _ := s.Subscribe(ctx, store.Income)
	recv(t, ch)

	if _, err := s.Upsert(ctx, store.Income, id, map[string]any{"status": "posted"}); err != nil {
		t.Fatal(err)
	}
	snap := recv(t, ch)
	if len(snap.Changes) != 1 || snap.Changes[0].Kind != store.Modified {
		t.Fatalf("changes = %+v, want one Modified", snap.Changes)
	}
	doc := snap.Docs[0]
	if doc.Fields["status"] != "posted" {
		t.Errorf("status = %v, want posted", doc.Fields["status"])
	}
	if doc.Fields["incomeType"] != "Consultancy" {
		t.Errorf("merge dropped untouched field, fields = %v", doc.Fields)
	}
}

func TestUpsert_CompositeKeyIsIdempotent(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	key := "2025-10|ProcurementIncome"
	s.Upsert(ctx, store.Budgets, key, map[string]any{"month": "2025-10", "type": "Procurement Income", "value": "1000"})
	s.Upsert(ctx, store.Budgets, key, map[string]any{"month": "2025-10", "type": "Procurement Income", "value": "2500"})

	ch, _ := s.Subscribe(ctx, store.Budgets)
	snap := recv(t, ch)
	if len(snap.Docs) != 1 {
		t.Fatalf("budget collection has %d docs after re-save, want 1", len(snap.Docs))
	}
	if snap.Docs[0].Fields["value"] != "2500" {
		t.Errorf("value = %v, want latest 2500", snap.Docs[0].Fields["value"])
	}
}

func TestDelete(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	id, _ := s.Upsert(ctx, store.Partners, "", map[string]any{"name": "Acme"})
	ch, _ := s.Subscribe(ctx, store.Partners)
	recv(t, ch)

	if err := s.Delete(ctx, store.Partners, id); err != nil {
		t.Fatal(err)
	}
	snap := recv(t, ch)
	if len(snap.Docs) != 0 {
		t.Errorf("docs remain after delete: %+v", snap.Docs)
	}
	if len(snap.Changes) != 1 || snap.Changes[0].Kind != store.Removed {
		t.Errorf("changes = %+v, want one Removed", snap.Changes)
	}

	// Deleting a missing id is not an error.
	if err := s.Delete(ctx, store.Partners, "gone"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestSubscribe_DetachesOnContextCancel(t *testing.T) {
	s := New()
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, _ := s.Subscribe(ctx, store.Income)
	recv(t, ch)
	cancel()

	// Give the detach goroutine a beat, then verify no delivery arrives.
	time.Sleep(50 * time.Millisecond)
	s.Upsert(context.Background(), store.Income, "", map[string]any{"value": "1"})
	select {
	case snap, ok := <-ch:
		if ok && len(snap.Changes) > 0 {
			t.Error("detached subscriber still received a write snapshot")
		}
	case <-time.After(100 * time.Millisecond):
	}
}
