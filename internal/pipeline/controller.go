package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"confwatch/internal/config"
	"confwatch/internal/dataset"
	"confwatch/internal/history"
	"confwatch/internal/knowledge"
	"confwatch/internal/logging"
	"confwatch/internal/notifications"
	"confwatch/internal/state"
)

// ErrLocked is returned when another run already holds the data directory lock.
var ErrLocked = errors.New("another confwatch run is in progress")

// Analyzer computes one venue-year analysis.
type Analyzer interface {
	AnalyzeYear(ctx context.Context, venue string, year int, displayName string, maxPapers int) (*knowledge.YearAnalysis, error)
}

// Notifier delivers a rendered message to every configured channel.
type Notifier interface {
	Dispatch(ctx context.Context, msg notifications.Message) []notifications.Delivery
}

// Ledger records runs and deliveries.
type Ledger interface {
	BeginRun(ctx context.Context, runID, mode string) error
	FinishRun(ctx context.Context, runID string, counters history.Counters, runErr error) error
	RecordDelivery(ctx context.Context, delivery history.Delivery) error
}

// Options selects the scope of a run.
type Options struct {
	// TestFile limits the run to one dataset document and forces every edition
	// in it to be treated as updated.
	TestFile string
}

func (o Options) mode() string {
	if o.TestFile != "" {
		return ModeTest
	}
	return ModeFull
}

// Run modes recorded in the ledger.
const (
	ModeFull = "full"
	ModeTest = "test"
)

// Controller runs the change-detection and enrichment pass.
type Controller struct {
	cfg      *config.Config
	loader   *dataset.Loader
	analyzer Analyzer
	notifier Notifier
	ledger   Ledger
	logger   *slog.Logger
	now      func() time.Time
	newRunID func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLedger records runs and deliveries in ledger.
func WithLedger(ledger Ledger) Option {
	return func(c *Controller) {
		c.ledger = ledger
	}
}

// WithClock overrides the time source used for deadline status.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRunIDGenerator overrides run identifier generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newRunID = fn
		}
	}
}

// NewController wires the pipeline collaborators together.
func NewController(cfg *config.Config, analyzer Analyzer, notifier Notifier, logger *slog.Logger, opts ...Option) *Controller {
	logger = logging.NewComponentLogger(logger, "pipeline")
	c := &Controller{
		cfg:      cfg,
		loader:   dataset.NewLoader(logger),
		analyzer: analyzer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs one pass over the dataset. Only one run may hold the data
// directory at a time; a concurrent run returns ErrLocked.
func (c *Controller) Run(ctx context.Context, opts Options) (*Summary, error) {
	unlock, err := c.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := c.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	r := &run{
		Controller: c,
		opts:       opts,
		logger:     logging.WithContext(ctx, c.logger),
		ledger:     c.ledger,
		summary:    &Summary{RunID: runID, Mode: opts.mode(), StartedAt: c.now()},
	}

	r.beginLedger(ctx)
	runErr := r.execute(ctx)
	r.summary.Duration = c.now().Sub(r.summary.StartedAt)
	r.finishLedger(ctx, runErr)

	if runErr != nil {
		return r.summary, runErr
	}
	r.logger.Info("run complete",
		logging.String("mode", r.summary.Mode),
		logging.Bool("initial_run", r.summary.InitialRun),
		logging.Int("editions_seen", r.summary.EditionsSeen),
		logging.Int("editions_updated", r.summary.EditionsUpdated),
		logging.Int("analyses_stored", r.summary.AnalysesStored),
		logging.Int("notifications", r.summary.Notifications),
		logging.Bool("saved", r.summary.Saved),
		logging.Duration("duration", r.summary.Duration))
	return r.summary, nil
}

func (c *Controller) acquireLock() (func(), error) {
	if err := c.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(c.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, c.cfg.LockPath())
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}, nil
}

// run carries the mutable state of a single pass.
type run struct {
	*Controller
	opts    Options
	logger  *slog.Logger
	ledger  Ledger
	summary *Summary
	state   *state.Store
	kb      *knowledge.Base
}

func (r *run) execute(ctx context.Context) error {
	var err error
	r.state, err = state.Open(r.cfg.StatePath(), r.logger)
	if err != nil {
		return err
	}
	r.kb, err = knowledge.Open(r.cfg.KnowledgeBasePath(), r.logger)
	if err != nil {
		return err
	}
	r.summary.InitialRun = r.state.Len() == 0
	if r.summary.InitialRun {
		r.logger.Info("no prior state, seeding without notifications")
	}

	series, err := r.loadSeries()
	if err != nil {
		return err
	}

	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.cfg.InterestedIn(s.Subject) {
			continue
		}
		r.summary.SeriesSeen++
		if err := r.processSeries(ctx, s); err != nil {
			return err
		}
	}

	return r.save()
}

func (r *run) loadSeries() ([]dataset.Series, error) {
	if r.opts.TestFile != "" {
		series, err := r.loader.LoadFile(r.opts.TestFile)
		if err != nil {
			return nil, fmt.Errorf("load test file: %w", err)
		}
		r.logger.Info("test run", logging.String("file", r.opts.TestFile), logging.Int("series", len(series)))
		return series, nil
	}
	series, err := r.loader.LoadDir(r.cfg.Paths.DatasetDir)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return series, nil
}

func (r *run) processSeries(ctx context.Context, series dataset.Series) error {
	venue := series.VenueKey()
	maxYear := series.MaxYear()
	for _, edition := range series.Editions {
		r.summary.EditionsSeen++
		id := edition.ID.String()
		fp := state.FingerprintOf(edition)
		changed := r.state.Changed(id, fp)
		if !changed && r.opts.TestFile == "" && !r.summary.InitialRun {
			continue
		}
		r.state.Put(id, fp)
		r.summary.EditionsUpdated++

		if edition.Year != maxYear {
			r.logger.Debug("historical edition recorded",
				logging.String(logging.FieldEditionID, id),
				logging.Int(logging.FieldYear, edition.Year))
			continue
		}
		if err := r.processLatest(ctx, series, edition, venue); err != nil {
			return err
		}
		if err := r.save(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) processLatest(ctx context.Context, series dataset.Series, edition dataset.Edition, venue string) error {
	id := edition.ID.String()
	logger := r.logger.With(
		logging.String(logging.FieldVenue, venue),
		logging.String(logging.FieldEditionID, id),
		logging.Int(logging.FieldYear, edition.Year))
	logger.Info("processing latest edition")
	r.summary.LatestProcessed++

	info := notifications.BuildInfo(series, edition, r.now())
	r.kb.EnsureVenue(venue)

	for offset := 1; offset <= r.cfg.Pipeline.HistoryYears; offset++ {
		year := edition.Year - offset
		stored, err := r.kb.Ensure(ctx, venue, year, func(ctx context.Context) (*knowledge.YearAnalysis, error) {
			return r.analyzer.AnalyzeYear(ctx, venue, year, series.Title, r.cfg.Pipeline.MaxPapersPerYear)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.summary.AnalysisFailures++
			logging.WarnWithContext(logger, "year analysis failed", "year_analysis_failed",
				logging.Int("history_year", year),
				logging.Error(err),
				logging.String(logging.FieldImpact, "year left unanalyzed; a later run retries it"),
				logging.String(logging.FieldErrorHint, "check LLM endpoint availability and quota"),
			)
			continue
		}
		if stored {
			r.summary.AnalysesStored++
			logger.Info("year analysis stored", logging.Int("history_year", year))
		}
	}

	if r.summary.InitialRun {
		return nil
	}

	msg := notifications.Compose(info, r.kb.Recent(venue, notifications.HistoryDepth))
	deliveries := r.notifier.Dispatch(ctx, msg)
	r.summary.Notifications++
	for _, d := range deliveries {
		if !d.Delivered() {
			r.summary.DeliveriesFailed++
		}
		r.recordDelivery(ctx, venue, id, d)
	}
	return nil
}

// save writes state and knowledge base when either changed since the last save.
func (r *run) save() error {
	if r.state.Dirty() {
		if err := r.state.Save(); err != nil {
			return err
		}
		r.summary.Saved = true
	}
	if r.kb.Dirty() {
		if err := r.kb.Save(); err != nil {
			return err
		}
		r.summary.Saved = true
	}
	return nil
}

func (r *run) beginLedger(ctx context.Context) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.BeginRun(ctx, r.summary.RunID, r.summary.Mode); err != nil {
		r.ledgerFailed("begin run", err)
		r.ledger = nil
	}
}

func (r *run) finishLedger(ctx context.Context, runErr error) {
	if r.ledger == nil {
		return
	}
	// Record the outcome even when the run was cancelled.
	ledgerCtx := context.WithoutCancel(ctx)
	if err := r.ledger.FinishRun(ledgerCtx, r.summary.RunID, r.summary.Counters(), runErr); err != nil {
		r.ledgerFailed("finish run", err)
	}
}

func (r *run) recordDelivery(ctx context.Context, venue, editionID string, d notifications.Delivery) {
	if r.ledger == nil {
		return
	}
	entry := history.Delivery{
		RunID:     r.summary.RunID,
		Venue:     venue,
		EditionID: editionID,
		Channel:   d.Channel,
		Status:    history.DeliverySent,
		SentAt:    r.now(),
	}
	if d.Err != nil {
		entry.Status = history.DeliveryFailed
		entry.Error = d.Err.Error()
	}
	if err := r.ledger.RecordDelivery(ctx, entry); err != nil {
		r.ledgerFailed("record delivery", err)
	}
}

func (r *run) ledgerFailed(op string, err error) {
	logging.WarnWithContext(r.logger, "history ledger write failed", "ledger_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldImpact, "run history is incomplete; tracking is unaffected"),
		logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
	)
}
