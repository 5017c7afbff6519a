package pipeline

import (
	"time"

	"confwatch/internal/history"
)

// Summary reports what a run did.
type Summary struct {
	RunID      string
	Mode       string
	InitialRun bool
	StartedAt  time.Time
	Duration   time.Duration

	SeriesSeen       int
	EditionsSeen     int
	EditionsUpdated  int
	LatestProcessed  int
	AnalysesStored   int
	AnalysisFailures int
	Notifications    int
	DeliveriesFailed int

	// Saved is true when state or knowledge base files were written.
	Saved bool
}

// Counters converts the summary into ledger counters.
func (s *Summary) Counters() history.Counters {
	return history.Counters{
		EditionsSeen:      s.EditionsSeen,
		EditionsUpdated:   s.EditionsUpdated,
		AnalysesStored:    s.AnalysesStored,
		NotificationsSent: s.Notifications,
	}
}
