package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"confwatch/internal/knowledge"
	"confwatch/internal/pipeline"
	"confwatch/internal/testsupport"
)

func seedKnowledge(t *testing.T, h *harness, venue string, year int, titles int) {
	t.Helper()
	if err := h.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	kb := testsupport.MustLoadKnowledge(t, h.cfg)
	if err := kb.Store(venue, year, knowledge.YearAnalysis{TitlesCount: titles, UpdatedAt: "2020-01-01"}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := kb.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestRecomputeReplacesStoredYear(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteDataset(t, h.cfg, "AI/aaai.yml", aaaiDocument)
	seedKnowledge(t, h, "aaai", 2022, 7)

	analysis, err := h.ctrl.Recompute(context.Background(), "aaai", 2022)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if analysis.TitlesCount != 50 {
		t.Fatalf("expected fresh analysis, got %+v", analysis)
	}

	kb := testsupport.MustLoadKnowledge(t, h.cfg)
	stored, ok := kb.Lookup("aaai", 2022)
	if !ok || stored.TitlesCount != 50 {
		t.Fatalf("expected replaced entry, got %+v (ok=%v)", stored, ok)
	}
	if got := stored.Summary[0].Name; got != "AAAI theme" {
		t.Fatalf("expected display name from dataset, got %q", got)
	}
}

func TestRecomputeKeepsEntryWhenNothingFound(t *testing.T) {
	h := newHarness(t)
	seedKnowledge(t, h, "aaai", 2022, 7)
	h.analyzer.empty = map[int]bool{2022: true}

	_, err := h.ctrl.Recompute(context.Background(), "aaai", 2022)
	if !errors.Is(err, pipeline.ErrNoPapers) {
		t.Fatalf("expected ErrNoPapers, got %v", err)
	}
	kb := testsupport.MustLoadKnowledge(t, h.cfg)
	stored, ok := kb.Lookup("aaai", 2022)
	if !ok || stored.TitlesCount != 7 {
		t.Fatalf("expected original entry kept, got %+v (ok=%v)", stored, ok)
	}
}

func TestRecomputeFallsBackToVenueKeyForDisplayName(t *testing.T) {
	h := newHarness(t)

	if _, err := h.ctrl.Recompute(context.Background(), "ndss", 2023); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	kb := testsupport.MustLoadKnowledge(t, h.cfg)
	stored, ok := kb.Lookup("ndss", 2023)
	if !ok {
		t.Fatal("expected new entry")
	}
	if got := stored.Summary[0].Name; got != "ndss theme" {
		t.Fatalf("expected venue key as display name, got %q", got)
	}
}
