// Package history keeps a per-project log of dispatched queries.
//
// The log lives inside the project's marker directory, so only
// initialized projects accumulate history. It is advisory: concurrent
// writers are last-write-wins and a corrupt file is silently reset on
// the next write rather than failing any command.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/codeseek/internal/logging"
	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNotInitialized indicates the project has no marker directory to
// hold a history file.
var ErrNotInitialized = errors.New("project not initialized")

const (
	// fileName is the history file inside the marker directory.
	fileName = "history.json"

	// emptyDoc is the reset document.
	emptyDoc = `{"entries":[]}`
)

// Kind labels what a query was dispatched as.
type Kind string

const (
	// KindSearch marks a plain search query.
	KindSearch Kind = "search"
	// KindAnalyze marks an analysis query.
	KindAnalyze Kind = "analyze"
)

// Entry is one recorded query.
type Entry struct {
	// Query is the dispatched query text.
	Query string

	// Kind labels the dispatch.
	Kind Kind

	// At is when the query was recorded.
	At time.Time
}

// Store persists query history under a project's marker directory.
type Store struct {
	markerDir  string
	maxEntries int

	mu  sync.Mutex
	log arbor.ILogger
}

// NewStore creates a history store.
func NewStore(markerDir string, maxEntries int) *Store {
	if markerDir == "" {
		markerDir = ".cseek"
	}
	if maxEntries <= 0 {
		maxEntries = 200
	}

	return &Store{
		markerDir:  markerDir,
		maxEntries: maxEntries,
		log:        logging.GetLogger(),
	}
}

// Path returns the history file path for a root.
func (s *Store) Path(root string) string {
	return filepath.Join(root, s.markerDir, fileName)
}

// Record appends a query to the project's log, trimming the oldest
// entries beyond the configured maximum.
func (s *Store) Record(root string, kind Kind, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(root, s.markerDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotInitialized, root)
	}

	doc := s.load(root)

	doc, err = sjson.Set(doc, "entries.-1", map[string]any{
		"query": query,
		"kind":  string(kind),
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	doc = s.trim(doc)

	return s.write(root, doc)
}

// Recent returns up to n entries, newest first. A missing or corrupt
// file reads as empty.
func (s *Store) Recent(root string, n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil
	}

	raw := gjson.Get(s.load(root), "entries").Array()

	if len(raw) > n {
		raw = raw[len(raw)-n:]
	}

	entries := make([]Entry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		at, _ := time.Parse(time.RFC3339, raw[i].Get("at").String())
		entries = append(entries, Entry{
			Query: raw[i].Get("query").String(),
			Kind:  Kind(raw[i].Get("kind").String()),
			At:    at,
		})
	}
	return entries
}

// load reads the current document, resetting on absence or corruption.
func (s *Store) load(root string) string {
	path := s.Path(root)

	data, err := os.ReadFile(path)
	if err != nil {
		return emptyDoc
	}

	if !gjson.Valid(string(data)) || !gjson.GetBytes(data, "entries").IsArray() {
		s.log.Warn().Str("path", path).Msg("history file corrupt, resetting")
		return emptyDoc
	}

	return string(data)
}

// trim drops the oldest entries beyond the maximum.
func (s *Store) trim(doc string) string {
	entries := gjson.Get(doc, "entries").Array()
	if len(entries) <= s.maxEntries {
		return doc
	}

	keep := entries[len(entries)-s.maxEntries:]

	out := emptyDoc
	for _, entry := range keep {
		out, _ = sjson.SetRaw(out, "entries.-1", entry.Raw)
	}
	return out
}

// write persists the document atomically.
func (s *Store) write(root, doc string) error {
	path := s.Path(root)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
