package state

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"confwatch/internal/dataset"
	"confwatch/internal/fileutil"
	"confwatch/internal/logging"
)

// Fingerprint is the change-detection snapshot of an edition: its year and its
// first timeline entry. Nothing else about an edition affects reprocessing.
type Fingerprint struct {
	Year     int                   `json:"year"`
	Timeline dataset.TimelineEntry `json:"timeline"`
}

// FingerprintOf derives the fingerprint for an edition.
func FingerprintOf(edition dataset.Edition) Fingerprint {
	return Fingerprint{Year: edition.Year, Timeline: edition.FirstTimeline()}
}

// Equal reports whether two fingerprints describe the same snapshot.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}

// Record pairs an edition id with its stored fingerprint.
type Record struct {
	ID          string
	Fingerprint Fingerprint
}

// Store is the persisted edition id -> fingerprint mapping. Entries are never
// removed.
type Store struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	records map[string]Fingerprint
	dirty   bool
}

// Open loads the state file at path. A missing file yields an empty store; a
// malformed file is an error.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "state"),
		records: make(map[string]Fingerprint),
	}
	if path == "" {
		return s, nil
	}
	if _, err := fileutil.ReadJSON(path, &s.records); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if s.records == nil {
		s.records = make(map[string]Fingerprint)
	}
	s.logger.Debug("loaded state",
		logging.Int("edition_count", len(s.records)),
		logging.String("path", path))
	return s, nil
}

// Get returns the stored fingerprint for an edition id.
func (s *Store) Get(id string) (Fingerprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.records[id]
	return fp, ok
}

// Changed reports whether fp differs from what is stored for id, including the
// case where nothing is stored yet.
func (s *Store) Changed(id string, fp Fingerprint) bool {
	stored, ok := s.Get(id)
	return !ok || !stored.Equal(fp)
}

// Put overwrites the fingerprint for id and marks the store dirty.
func (s *Store) Put(id string, fp Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = fp
	s.dirty = true
}

// Len returns the number of tracked editions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns every stored fingerprint sorted by edition id.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for id, fp := range s.records {
		out = append(out, Record{ID: id, Fingerprint: fp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dirty reports whether the store changed since it was loaded or last saved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Save writes the whole store atomically and clears the dirty flag.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fileutil.WriteJSONAtomic(s.path, s.records); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	s.dirty = false
	return nil
}
