package history

import "time"

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	// RunRunning marks a run that has started and not yet finished.
	RunRunning RunStatus = "running"
	// RunSucceeded marks a run that completed without a fatal error.
	RunSucceeded RunStatus = "succeeded"
	// RunFailed marks a run that stopped on a fatal error.
	RunFailed RunStatus = "failed"
)

// DeliveryStatus is the outcome of one channel delivery.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Counters are the per-run tallies stored when a run finishes.
type Counters struct {
	EditionsSeen      int
	EditionsUpdated   int
	AnalysesStored    int
	NotificationsSent int
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID         int64
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Mode       string
	Counters
	Status RunStatus
	Error  string
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Delivery is one notification attempt on one channel.
type Delivery struct {
	RunID     string
	Venue     string
	EditionID string
	Channel   string
	Status    DeliveryStatus
	Error     string
	SentAt    time.Time
}
