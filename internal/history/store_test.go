package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"confwatch/internal/history"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRunLifecycle(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", "full"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	run, err := store.GetRun(ctx, "run-1")
	if err != nil || run == nil {
		t.Fatalf("GetRun failed: %v %v", run, err)
	}
	if run.Status != history.RunRunning || !run.FinishedAt.IsZero() || run.Duration() != 0 {
		t.Fatalf("unexpected running state %+v", run)
	}

	counters := history.Counters{EditionsSeen: 10, EditionsUpdated: 2, AnalysesStored: 3, NotificationsSent: 1}
	if err := store.FinishRun(ctx, "run-1", counters, nil); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	run, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != history.RunSucceeded || run.Counters != counters || run.FinishedAt.IsZero() {
		t.Fatalf("unexpected finished run %+v", run)
	}

	if err := store.BeginRun(ctx, "run-2", "test"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-2", history.Counters{}, errors.New("malformed state file")); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-2" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
	if runs[0].Status != history.RunFailed || runs[0].Error != "malformed state file" {
		t.Fatalf("unexpected failed run %+v", runs[0])
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store, _ := openStore(t)
	if err := store.FinishRun(context.Background(), "missing", history.Counters{}, nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
	run, err := store.GetRun(context.Background(), "missing")
	if err != nil || run != nil {
		t.Fatalf("expected nil run, got %+v %v", run, err)
	}
}

func TestDeliveries(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-1", "full"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	for _, d := range []history.Delivery{
		{RunID: "run-1", Venue: "infocom", EditionID: "4105", Channel: "pushplus", Status: history.DeliverySent},
		{RunID: "run-1", Venue: "infocom", EditionID: "4105", Channel: "email", Status: history.DeliveryFailed, Error: "smtp auth: 535"},
	} {
		if err := store.RecordDelivery(ctx, d); err != nil {
			t.Fatalf("RecordDelivery failed: %v", err)
		}
	}

	deliveries, err := store.Deliveries(ctx, "run-1")
	if err != nil {
		t.Fatalf("Deliveries failed: %v", err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	if deliveries[1].Channel != "email" || deliveries[1].Error != "smtp auth: 535" || deliveries[1].SentAt.IsZero() {
		t.Fatalf("unexpected delivery %+v", deliveries[1])
	}

	if err := store.RecordDelivery(ctx, history.Delivery{RunID: "unknown", Venue: "x", EditionID: "1", Channel: "email", Status: history.DeliverySent}); err == nil {
		t.Fatal("expected foreign key violation for unknown run")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-1", "full"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.RecentRuns(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %+v %v", runs, err)
	}
}
