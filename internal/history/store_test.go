package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func newInitializedRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".cseek"), 0o755); err != nil {
		t.Fatalf("mkdir marker: %v", err)
	}
	return root
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := newInitializedRoot(t)

	if err := store.Record(root, KindSearch, "auth handling"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(root, KindAnalyze, "token refresh"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries := store.Recent(root, 10)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Query != "token refresh" || entries[0].Kind != KindAnalyze {
		t.Errorf("entries[0] = %+v, want the analyze query", entries[0])
	}
	if entries[1].Query != "auth handling" || entries[1].Kind != KindSearch {
		t.Errorf("entries[1] = %+v, want the search query", entries[1])
	}

	if entries[0].At.IsZero() {
		t.Error("entries[0].At is zero, want a timestamp")
	}
}

func TestStore_RecordUninitialized(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := t.TempDir()

	err := store.Record(root, KindSearch, "query")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Record error = %v, want ErrNotInitialized", err)
	}
}

func TestStore_FileLocation(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := newInitializedRoot(t)

	if err := store.Record(root, KindSearch, "query"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	want := filepath.Join(root, ".cseek", "history.json")
	if store.Path(root) != want {
		t.Errorf("Path() = %q, want %q", store.Path(root), want)
	}

	if _, err := os.Stat(want); err != nil {
		t.Errorf("history file missing at %q: %v", want, err)
	}
}

func TestStore_TrimOldestFirst(t *testing.T) {
	store := NewStore(".cseek", 3)
	root := newInitializedRoot(t)

	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		if err := store.Record(root, KindSearch, q); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries := store.Recent(root, 10)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	got := []string{entries[0].Query, entries[1].Query, entries[2].Query}
	want := []string{"q5", "q4", "q3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d].Query = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := newInitializedRoot(t)

	for _, q := range []string{"q1", "q2", "q3"} {
		if err := store.Record(root, KindSearch, q); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	if entries := store.Recent(root, 2); len(entries) != 2 {
		t.Errorf("Recent(2) returned %d entries, want 2", len(entries))
	}

	if entries := store.Recent(root, 0); entries != nil {
		t.Errorf("Recent(0) = %v, want nil", entries)
	}
}

func TestStore_RecentMissingFile(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := newInitializedRoot(t)

	if entries := store.Recent(root, 5); len(entries) != 0 {
		t.Errorf("Recent on empty project returned %d entries, want 0", len(entries))
	}
}

func TestStore_CorruptFileResets(t *testing.T) {
	store := NewStore(".cseek", 10)
	root := newInitializedRoot(t)

	path := store.Path(root)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	// Reads treat it as empty.
	if entries := store.Recent(root, 5); len(entries) != 0 {
		t.Errorf("Recent on corrupt file returned %d entries, want 0", len(entries))
	}

	// The next write replaces it with a valid document.
	if err := store.Record(root, KindSearch, "fresh"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Error("history file still invalid after reset")
	}

	entries := store.Recent(root, 5)
	if len(entries) != 1 || entries[0].Query != "fresh" {
		t.Errorf("entries after reset = %+v, want only the fresh query", entries)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	root := newInitializedRoot(t)

	if err := NewStore(".cseek", 10).Record(root, KindSearch, "durable"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries := NewStore(".cseek", 10).Recent(root, 5)
	if len(entries) != 1 || entries[0].Query != "durable" {
		t.Errorf("entries from a fresh store = %+v, want the recorded query", entries)
	}
}
