package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// timeLayout is fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	runColumns      = "id, run_id, started_at, finished_at, mode, editions_seen, editions_updated, analyses_stored, notifications_sent, status, error"
	deliveryColumns = "run_id, venue, edition_id, channel, status, error, sent_at"
)

// Store records runs and notification deliveries in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, runID, mode string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, mode, status) VALUES (?, ?, ?, ?)`,
		runID, formatTime(s.now()), mode, RunRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the run's counters and final status. A non-nil runErr marks
// the run failed.
func (s *Store) FinishRun(ctx context.Context, runID string, counters Counters, runErr error) error {
	status := RunSucceeded
	var message string
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, editions_seen = ?, editions_updated = ?,
            analyses_stored = ?, notifications_sent = ?, status = ?, error = ?
         WHERE run_id = ?`,
		formatTime(s.now()),
		counters.EditionsSeen,
		counters.EditionsUpdated,
		counters.AnalysesStored,
		counters.NotificationsSent,
		status,
		nullableString(message),
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

// RecordDelivery stores one channel delivery for a run.
func (s *Store) RecordDelivery(ctx context.Context, delivery Delivery) error {
	sentAt := delivery.SentAt
	if sentAt.IsZero() {
		sentAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (`+deliveryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		delivery.RunID,
		delivery.Venue,
		delivery.EditionID,
		delivery.Channel,
		delivery.Status,
		nullableString(delivery.Error),
		formatTime(sentAt),
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by its run identifier. It returns nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Deliveries returns the deliveries recorded for runID in insertion order.
func (s *Store) Deliveries(ctx context.Context, runID string) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var (
			d         Delivery
			status    string
			errorText sql.NullString
			sentRaw   string
		)
		if err := rows.Scan(&d.RunID, &d.Venue, &d.EditionID, &d.Channel, &status, &errorText, &sentRaw); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.Status = DeliveryStatus(status)
		d.Error = errorText.String
		if sentAt, err := parseTimeString(sentRaw); err == nil {
			d.SentAt = sentAt
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		status      string
		errorText   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&startedRaw,
		&finishedRaw,
		&run.Mode,
		&run.EditionsSeen,
		&run.EditionsUpdated,
		&run.AnalysesStored,
		&run.NotificationsSent,
		&status,
		&errorText,
	); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.Error = errorText.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
