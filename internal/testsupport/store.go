package testsupport

import (
	"testing"

	"confwatch/internal/config"
	"confwatch/internal/history"
	"confwatch/internal/knowledge"
	"confwatch/internal/state"
)

// MustOpenHistory opens the config's history ledger and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustLoadState reads the config's state file.
func MustLoadState(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Open(cfg.StatePath(), nil)
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	return store
}

// MustLoadKnowledge reads the config's knowledge base file.
func MustLoadKnowledge(t testing.TB, cfg *config.Config) *knowledge.Base {
	t.Helper()

	base, err := knowledge.Open(cfg.KnowledgeBasePath(), nil)
	if err != nil {
		t.Fatalf("knowledge.Open: %v", err)
	}
	return base
}

// SeedState writes fingerprints to the config's state file so a run is not
// treated as the initial one.
func SeedState(t testing.TB, cfg *config.Config, records map[string]state.Fingerprint) {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store := MustLoadState(t, cfg)
	for id, fp := range records {
		store.Put(id, fp)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save state: %v", err)
	}
}
