package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStores(t *testing.T) map[string]SessionStore {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]SessionStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestSessionStore_CRUD(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			a := &SessionRecord{ID: "a", FileName: "nda.pdf", FilePath: "/u/a_nda.pdf", FileSize: 2048, CreatedAt: base}
			b := &SessionRecord{ID: "b", FileName: "order.txt", FileSize: 10, CreatedAt: base.Add(time.Minute)}
			if err := store.CreateSession(ctx, b); err != nil {
				t.Fatal(err)
			}
			if err := store.CreateSession(ctx, a); err != nil {
				t.Fatal(err)
			}

			got, err := store.GetSession(ctx, "a")
			if err != nil {
				t.Fatal(err)
			}
			if got.FileName != "nda.pdf" || got.FileSize != 2048 || got.FilePath != "/u/a_nda.pdf" || got.ChatReady {
				t.Errorf("GetSession = %+v", got)
			}

			if err := store.MarkChatReady(ctx, "a"); err != nil {
				t.Fatal(err)
			}
			got, _ = store.GetSession(ctx, "a")
			if !got.ChatReady {
				t.Error("expected chat-ready after MarkChatReady")
			}

			list, err := store.ListSessions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
				t.Errorf("ListSessions order = %v", ids(list))
			}

			st, err := store.Stats(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if st.Uploaded != 2 || st.ChatReady != 1 {
				t.Errorf("Stats = %+v, want 2 uploaded / 1 chat-ready", st)
			}

			deleted, err := store.DeleteSession(ctx, "a")
			if err != nil {
				t.Fatal(err)
			}
			if deleted.FilePath != "/u/a_nda.pdf" {
				t.Errorf("DeleteSession returned %+v", deleted)
			}
			if _, err := store.GetSession(ctx, "a"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetSession after delete: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSessionStore_NotFound(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetSession: err = %v", err)
			}
			if err := store.MarkChatReady(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("MarkChatReady: err = %v", err)
			}
			if _, err := store.DeleteSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteSession: err = %v", err)
			}
			st, err := store.Stats(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if st != (Stats{}) {
				t.Errorf("Stats on empty store = %+v", st)
			}
		})
	}
}

func TestSessionStore_CreateSetsTimestamp(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			rec := &SessionRecord{ID: "x", FileName: "x.pdf"}
			if err := store.CreateSession(context.Background(), rec); err != nil {
				t.Fatal(err)
			}
			if rec.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.CreateSession(ctx, &SessionRecord{ID: "keep", FileName: "lease.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.GetSession(ctx, "keep")
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != "lease.pdf" {
		t.Errorf("FileName = %q", got.FileName)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(\"\") = %T, want *MemoryStore", s)
	}
	s, err = Open(filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(path) = %T, want *SQLiteStore", s)
	}
}

func ids(recs []*SessionRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
