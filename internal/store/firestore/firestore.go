// Package firestore is the managed store backend. All three collections
// live under apps/<namespace>/ and are observed through Firestore's own
// snapshot listeners, so every open session (the writing one included)
// sees a write only when the listener round-trips it.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"avedash/internal/store"
)

type Config struct {
	ProjectID       string
	Namespace       string
	CredentialsFile string
}

type Store struct {
	client *firestore.Client
	ns     string
}

// New builds the Firebase app and its Firestore client. Construction
// failure is fatal to the session; callers log and give up.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client, ns: cfg.Namespace}, nil
}

func (s *Store) collection(c store.Collection) *firestore.CollectionRef {
	return s.client.Collection("apps").Doc(s.ns).Collection(string(c))
}

func (s *Store) Subscribe(ctx context.Context, c store.Collection) (<-chan store.Snapshot, error) {
	ch := make(chan store.Snapshot, 16)
	it := s.collection(c).Snapshots(ctx)

	go func() {
		defer close(ch)
		defer it.Stop()
		first := true
		for {
			qs, err := it.Next()
			if err != nil {
				// No retry: the collection simply stops updating.
				if ctx.Err() == nil {
					slog.Error("Subscription stream failed", "collection", c, "error", err)
				}
				return
			}
			snap, err := convert(qs, first)
			if err != nil {
				slog.Error("Snapshot conversion failed", "collection", c, "error", err)
				return
			}
			first = false
			select {
			case ch <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func convert(qs *firestore.QuerySnapshot, first bool) (store.Snapshot, error) {
	docs, err := qs.Documents.GetAll()
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("read snapshot documents: %w", err)
	}

	snap := store.Snapshot{First: first}
	for _, d := range docs {
		snap.Docs = append(snap.Docs, store.Document{ID: d.Ref.ID, Fields: d.Data()})
	}
	for _, c := range qs.Changes {
		change := store.Change{Doc: store.Document{ID: c.Doc.Ref.ID, Fields: c.Doc.Data()}}
		switch c.Kind {
		case firestore.DocumentAdded:
			change.Kind = store.Added
		case firestore.DocumentModified:
			change.Kind = store.Modified
		case firestore.DocumentRemoved:
			change.Kind = store.Removed
		}
		snap.Changes = append(snap.Changes, change)
	}
	return snap, nil
}

func (s *Store) Upsert(ctx context.Context, c store.Collection, id string, fields map[string]any) (string, error) {
	ref := s.collection(c).Doc(id)
	if id == "" {
		ref = s.collection(c).NewDoc()
	}
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return "", fmt.Errorf("upsert %s/%s: %w", c, ref.ID, err)
	}
	return ref.ID, nil
}

func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	if _, err := s.collection(c).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
