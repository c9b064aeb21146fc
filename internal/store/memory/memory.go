// Package memory is the in-process store backend, used for development
// and tests. It reproduces the remote store's observable behavior:
// writes are only visible through subscription snapshots, and every
// subscriber (the writer included) receives the same fan-out.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"

	"avedash/internal/store"
)

type Store struct {
	mu   sync.Mutex
	cols map[store.Collection]*collection
}

type collection struct {
	docs  map[string]map[string]any
	order map[string]int // insertion order, kept stable across updates
	next  int
	subs  map[chan store.Snapshot]struct{}
}

func New() *Store {
	return &Store{cols: make(map[store.Collection]*collection)}
}

func (s *Store) col(c store.Collection) *collection {
	col, ok := s.cols[c]
	if !ok {
		col = &collection{
			docs:  make(map[string]map[string]any),
			order: make(map[string]int),
			subs:  make(map[chan store.Snapshot]struct{}),
		}
		s.cols[c] = col
	}
	return col
}

func (s *Store) Subscribe(ctx context.Context, c store.Collection) (<-chan store.Snapshot, error) {
	s.mu.Lock()
	col := s.col(c)
	ch := make(chan store.Snapshot, 16)
	col.subs[ch] = struct{}{}
	first := col.snapshot(nil)
	first.First = true
	s.mu.Unlock()

	ch <- first

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(col.subs, ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *Store) Upsert(_ context.Context, c store.Collection, id string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.col(c)

	if id == "" {
		id = newID()
	}
	kind := store.Added
	doc, exists := col.docs[id]
	if exists {
		kind = store.Modified
	} else {
		doc = make(map[string]any)
		col.docs[id] = doc
		col.order[id] = col.next
		col.next++
	}
	for k, v := range fields {
		doc[k] = v
	}

	col.broadcast(col.snapshot([]store.Change{{Kind: kind, Doc: document(id, doc)}}))
	return id, nil
}

func (s *Store) Delete(_ context.Context, c store.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.col(c)

	doc, exists := col.docs[id]
	if !exists {
		return nil
	}
	delete(col.docs, id)
	delete(col.order, id)

	col.broadcast(col.snapshot([]store.Change{{Kind: store.Removed, Doc: document(id, doc)}}))
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, col := range s.cols {
		for ch := range col.subs {
			close(ch)
		}
		col.subs = make(map[chan store.Snapshot]struct{})
	}
	return nil
}

// snapshot builds a full view in insertion order. Caller holds the lock.
func (c *collection) snapshot(changes []store.Change) store.Snapshot {
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return c.order[ids[i]] < c.order[ids[j]] })

	snap := store.Snapshot{Changes: changes}
	for _, id := range ids {
		snap.Docs = append(snap.Docs, document(id, c.docs[id]))
	}
	return snap
}

// broadcast fans a snapshot out to every subscriber. Slow subscribers
// drop deliveries rather than block writers; the next snapshot carries
// the full state anyway.
func (c *collection) broadcast(snap store.Snapshot) {
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func document(id string, fields map[string]any) store.Document {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return store.Document{ID: id, Fields: copied}
}

func newID() string {
	b := make([]byte, 10)
	rand.Read(b)
	return hex.EncodeToString(b)
}
