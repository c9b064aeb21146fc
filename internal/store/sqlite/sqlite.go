// Package sqlite is the local, single-process store backend. Documents
// live in one JSON-columned table; subscriptions are served by an
// in-process hub so the write/subscribe round trip behaves like the
// remote store's.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"avedash/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB

	mu   sync.Mutex
	seq  int64
	subs map[store.Collection]map[chan store.Snapshot]struct{}
}

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		db:   db,
		subs: make(map[store.Collection]map[chan store.Snapshot]struct{}),
	}
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM documents`).Scan(&s.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("read sequence: %w", err)
	}
	return s, nil
}

func (s *Store) Subscribe(ctx context.Context, c store.Collection) (<-chan store.Snapshot, error) {
	docs, err := s.load(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}

	ch := make(chan store.Snapshot, 16)
	s.mu.Lock()
	if s.subs[c] == nil {
		s.subs[c] = make(map[chan store.Snapshot]struct{})
	}
	s.subs[c][ch] = struct{}{}
	s.mu.Unlock()

	ch <- store.Snapshot{Docs: docs, First: true}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs[c], ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *Store) Upsert(ctx context.Context, c store.Collection, id string, fields map[string]any) (string, error) {
	if id == "" {
		id = newID()
	}

	kind := store.Added
	merged := fields

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`, string(c), id).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return "", fmt.Errorf("read document: %w", err)
	default:
		kind = store.Modified
		existing := make(map[string]any)
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return "", fmt.Errorf("decode document %s: %w", id, err)
		}
		for k, v := range fields {
			existing[k] = v
		}
		merged = existing
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if kind == store.Added {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (collection, id, fields, seq) VALUES (?, ?, ?, ?)`,
			string(c), id, string(encoded), seq)
	} else {
		// Keep the original seq so listing order stays by insertion.
		_, err = s.db.ExecContext(ctx,
			`UPDATE documents SET fields = ? WHERE collection = ? AND id = ?`,
			string(encoded), string(c), id)
	}
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	if err := s.notify(ctx, c, store.Change{Kind: kind, Doc: store.Document{ID: id, Fields: merged}}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, string(c), id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return s.notify(ctx, c, store.Change{Kind: store.Removed, Doc: store.Document{ID: id}})
}

func (s *Store) Close() error {
	s.mu.Lock()
	for _, subs := range s.subs {
		for ch := range subs {
			close(ch)
		}
	}
	s.subs = make(map[store.Collection]map[chan store.Snapshot]struct{})
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) load(ctx context.Context, c store.Collection) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ? ORDER BY seq`, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields := make(map[string]any)
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// notify rebuilds the collection snapshot and fans it out. Deliveries to
// slow subscribers are dropped; the next write carries full state again.
func (s *Store) notify(ctx context.Context, c store.Collection, change store.Change) error {
	docs, err := s.load(ctx, c)
	if err != nil {
		return fmt.Errorf("reload %s: %w", c, err)
	}
	snap := store.Snapshot{Docs: docs, Changes: []store.Change{change}}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[c] {
		select {
		case ch <- snap:
		default:
		}
	}
	return nil
}

func newID() string {
	b := make([]byte, 10)
	rand.Read(b)
	return hex.EncodeToString(b)
}
