package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"confwatch/internal/dataset"
	"confwatch/internal/state"
)

func TestFingerprintIgnoresFieldsOutsideSnapshot(t *testing.T) {
	base := dataset.Edition{
		ID:       "aaai24",
		Year:     2024,
		Place:    "Vancouver",
		Timezone: "AoE",
		Timeline: []dataset.TimelineEntry{
			{Deadline: "2023-08-15 23:59:59"},
			{Deadline: "2023-09-01 23:59:59"},
		},
	}
	moved := base
	moved.Place = "Philadelphia"
	moved.Link = "https://example.org"
	moved.Timeline = []dataset.TimelineEntry{base.Timeline[0], {Deadline: "2023-10-01 23:59:59"}}

	fp := state.FingerprintOf(base)
	if !fp.Equal(fp) {
		t.Fatal("fingerprint equality must be reflexive")
	}
	if !fp.Equal(state.FingerprintOf(moved)) {
		t.Fatal("changes outside year and first timeline entry must not alter the fingerprint")
	}

	shifted := base
	shifted.Timeline = []dataset.TimelineEntry{{Deadline: "2023-08-22 23:59:59"}}
	if fp.Equal(state.FingerprintOf(shifted)) {
		t.Fatal("changing the first deadline must alter the fingerprint")
	}

	renumbered := base
	renumbered.Year = 2025
	if fp.Equal(state.FingerprintOf(renumbered)) {
		t.Fatal("changing the year must alter the fingerprint")
	}
}

func TestStoreChangedAndPut(t *testing.T) {
	store, err := state.Open("", nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	fp := state.Fingerprint{Year: 2024, Timeline: dataset.TimelineEntry{Deadline: "TBD"}}

	if !store.Changed("aaai24", fp) {
		t.Fatal("unknown id must count as changed")
	}
	store.Put("aaai24", fp)
	if store.Changed("aaai24", fp) {
		t.Fatal("identical fingerprint must not count as changed")
	}
	if !store.Dirty() || store.Len() != 1 {
		t.Fatalf("unexpected store state dirty=%v len=%d", store.Dirty(), store.Len())
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := state.Open(path, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	store.Put("b", state.Fingerprint{Year: 2023})
	store.Put("a", state.Fingerprint{Year: 2024, Timeline: dataset.TimelineEntry{Deadline: "2024-01-01", AbstractDeadline: "2023-12-20"}})
	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if store.Dirty() {
		t.Fatal("expected clean store after save")
	}

	reopened, err := state.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	records := reopened.Records()
	if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[0].Fingerprint.Timeline.AbstractDeadline != "2023-12-20" {
		t.Fatalf("timeline not preserved: %+v", records[0].Fingerprint)
	}
	if reopened.Dirty() {
		t.Fatal("freshly loaded store must be clean")
	}
}

func TestOpenMalformedStateFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Open(path, nil); err == nil {
		t.Fatal("expected error for malformed state file")
	}
}
