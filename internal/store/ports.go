// Package store defines the document-store contract the dashboard
// consumes. Three collections live under one application namespace; the
// authoritative state is only ever observed through subscription
// snapshots, never through local echoes of a write.
package store

import "context"

type Collection string

const (
	Partners Collection = "partners"
	Income   Collection = "income"
	Budgets  Collection = "budgets"
)

type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Removed
)

type (
	// Document is one stored record: an opaque id plus loosely typed
	// fields, exactly as the store holds them.
	Document struct {
		ID     string
		Fields map[string]any
	}

	// Change classifies one document's transition between two snapshots.
	Change struct {
		Kind ChangeKind
		Doc  Document
	}

	// Snapshot is a full view of a collection plus the per-record changes
	// since the previous delivery. First marks the initial delivery after
	// (re)subscribing; its contents must not be reported as new.
	//
	// Consumers always replace their state with Docs wholesale. Deltas are
	// never accumulated, so duplicate or out-of-order deliveries are
	// harmless.
	Snapshot struct {
		Docs    []Document
		Changes []Change
		First   bool
	}

	// Documents is the write-through, subscribe-back contract. Writes are
	// fire-and-forget from the UI's point of view: their effect is only
	// visible once the subscription round-trips it.
	Documents interface {
		// Subscribe returns a stream of snapshots for one collection. The
		// channel closes when the subscription fails or ctx is done; no
		// retry is attempted.
		Subscribe(ctx context.Context, c Collection) (<-chan Snapshot, error)

		// Upsert writes fields into the document with the given id,
		// merging into any existing fields. An empty id asks the store to
		// assign one. Returns the document id.
		Upsert(ctx context.Context, c Collection, id string, fields map[string]any) (string, error)

		// Delete removes a document unconditionally. Deleting a missing
		// id is not an error.
		Delete(ctx context.Context, c Collection, id string) error

		Close() error
	}
)
