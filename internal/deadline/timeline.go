package deadline

import (
	"time"

	"confwatch/internal/dataset"
)

// Status describes where an edition stands relative to its deadlines.
type Status int

const (
	// StatusUndetermined means the edition has no timeline at all.
	StatusUndetermined Status = iota
	// StatusActive means at least one deadline is still in the future.
	StatusActive
	// StatusExpired means every parseable deadline has passed or none could be read.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	default:
		return "undetermined"
	}
}

// Label returns the display text used in notifications.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "进行中"
	case StatusExpired:
		return "已截止"
	default:
		return "未定"
	}
}

// SelectActive returns the first timeline entry whose deadline is strictly after
// now. TBD and unparseable deadlines are skipped. When no entry qualifies the last
// entry is returned as expired; an empty timeline is undetermined.
func SelectActive(entries []dataset.TimelineEntry, tzLabel string, now time.Time) (dataset.TimelineEntry, Status) {
	if len(entries) == 0 {
		return dataset.TimelineEntry{}, StatusUndetermined
	}
	now = now.UTC()
	for _, entry := range entries {
		if entry.Deadline == "" || entry.Deadline == TBD {
			continue
		}
		instant, err := ToUTC(entry.Deadline, tzLabel)
		if err != nil {
			continue
		}
		if instant.After(now) {
			return entry, StatusActive
		}
	}
	return entries[len(entries)-1], StatusExpired
}
