package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"confwatch/internal/fileutil"
	"confwatch/internal/logging"
)

// ErrExists is returned when storing a (venue, year) that is already present.
var ErrExists = errors.New("knowledge entry already exists")

// Base is the persisted venue -> year -> analysis mapping. An entry, once
// stored, is never overwritten; Forget is the only way to clear one.
type Base struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	venues map[string]map[string]YearAnalysis
	dirty  bool
}

// Open loads the knowledge base at path. A missing file yields an empty base;
// a malformed file is an error.
func Open(path string, logger *slog.Logger) (*Base, error) {
	b := &Base{
		path:   path,
		logger: logging.NewComponentLogger(logger, "knowledge"),
		venues: make(map[string]map[string]YearAnalysis),
	}
	if path == "" {
		return b, nil
	}
	if _, err := fileutil.ReadJSON(path, &b.venues); err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	if b.venues == nil {
		b.venues = make(map[string]map[string]YearAnalysis)
	}
	b.logger.Debug("loaded knowledge base",
		logging.Int("venue_count", len(b.venues)),
		logging.String("path", path))
	return b, nil
}

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// venueKey is the stored form of a venue; every accessor goes through it.
func venueKey(venue string) string {
	return strings.TrimSpace(venue)
}

// Lookup returns the analysis for venue and year if present.
func (b *Base) Lookup(venue string, year int) (YearAnalysis, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	analysis, ok := b.venues[venueKey(venue)][yearKey(year)]
	return analysis, ok
}

// Has reports whether venue and year already have an analysis.
func (b *Base) Has(venue string, year int) bool {
	_, ok := b.Lookup(venue, year)
	return ok
}

// EnsureVenue registers venue with an empty year map if it is not yet known.
func (b *Base) EnsureVenue(venue string) {
	venue = venueKey(venue)
	if venue == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.venues[venue]; !ok {
		b.venues[venue] = make(map[string]YearAnalysis)
		b.dirty = true
	}
}

// Store records an analysis. It refuses to overwrite an existing entry.
func (b *Base) Store(venue string, year int, analysis YearAnalysis) error {
	venue = venueKey(venue)
	if venue == "" {
		return errors.New("venue cannot be empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	years, ok := b.venues[venue]
	if !ok {
		years = make(map[string]YearAnalysis)
		b.venues[venue] = years
	}
	key := yearKey(year)
	if _, exists := years[key]; exists {
		return fmt.Errorf("%s %s: %w", venue, key, ErrExists)
	}
	years[key] = analysis
	b.dirty = true

	b.logger.Debug("stored year analysis",
		logging.String(logging.FieldVenue, venue),
		logging.Int(logging.FieldYear, year),
		logging.Int("titles_count", analysis.TitlesCount),
		logging.Int("themes", len(analysis.Summary)))
	return nil
}

// ComputeFunc produces an analysis for a (venue, year). A nil result means no
// analysis could be produced and nothing is stored.
type ComputeFunc func(ctx context.Context) (*YearAnalysis, error)

// Ensure runs compute only when venue and year are absent, storing a non-nil
// result. It reports whether a new entry was stored.
func (b *Base) Ensure(ctx context.Context, venue string, year int, compute ComputeFunc) (bool, error) {
	if b.Has(venue, year) {
		return false, nil
	}
	analysis, err := compute(ctx)
	if err != nil {
		return false, err
	}
	if analysis == nil {
		return false, nil
	}
	if err := b.Store(venue, year, *analysis); err != nil {
		return false, err
	}
	return true, nil
}

// Forget removes the analysis for venue and year so a later run recomputes it.
func (b *Base) Forget(venue string, year int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	years, ok := b.venues[venueKey(venue)]
	if !ok {
		return false
	}
	key := yearKey(year)
	if _, exists := years[key]; !exists {
		return false
	}
	delete(years, key)
	b.dirty = true
	return true
}

// Recent returns up to limit year entries for venue, newest first.
func (b *Base) Recent(venue string, limit int) []YearEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	years := b.venues[venueKey(venue)]
	entries := make([]YearEntry, 0, len(years))
	for year, analysis := range years {
		entries = append(entries, YearEntry{Year: year, Analysis: analysis})
	}
	sort.Slice(entries, func(i, j int) bool {
		return yearAfter(entries[i].Year, entries[j].Year)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func yearAfter(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai > bi
	}
	return a > b
}

// Venues returns every known venue key in sorted order.
func (b *Base) Venues() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	venues := make([]string, 0, len(b.venues))
	for venue := range b.venues {
		venues = append(venues, venue)
	}
	sort.Strings(venues)
	return venues
}

// Dirty reports whether the base changed since it was loaded or last saved.
func (b *Base) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// Save writes the whole base atomically and clears the dirty flag.
func (b *Base) Save() error {
	if b.path == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := fileutil.WriteJSONAtomic(b.path, b.venues); err != nil {
		return fmt.Errorf("persist knowledge base: %w", err)
	}
	b.dirty = false
	return nil
}
