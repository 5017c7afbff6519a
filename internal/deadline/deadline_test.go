package deadline_test

import (
	"testing"
	"time"

	"confwatch/internal/dataset"
	"confwatch/internal/deadline"
)

func TestResolveOffset(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"AoE", -12},
		{" aoe ", -12},
		{"EST", -5},
		{"EDT", -4},
		{"CST", 8},
		{"JST", 9},
		{"UTC", 0},
		{"UTC+8", 8},
		{"UTC-7", -7},
		{"UTC +8", 8},
		{"UTC - 3", 0},
		{"utc+10", 10},
		{"UTC+5:30", 0},
		{"", 0},
		{"PST", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := deadline.ResolveOffset(tt.label); got != tt.want {
			t.Errorf("ResolveOffset(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestToReferenceTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		tz    string
		want  string
	}{
		{"tbd passes through", "TBD", "AoE", "TBD"},
		{"empty is tbd", "", "UTC", "TBD"},
		{"zero offset shifts by eight hours", "2024-05-01 10:00:00", "UTC", "2024-05-01 18:00:00 (CST)"},
		{"aoe rolls over the day", "2024-05-01 23:59:59", "AoE", "2024-05-02 19:59:59 (CST)"},
		{"same zone is unchanged", "2024-05-01 23:59:59", "CST", "2024-05-01 23:59:59 (CST)"},
		{"date only", "2024-05-01", "UTC-8", "2024-05-01 16:00:00 (CST)"},
		{"unparseable", "sometime soon", "UTC", "sometime soon (Parse Error)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deadline.ToReferenceTime(tt.value, tt.tz); got != tt.want {
				t.Fatalf("ToReferenceTime(%q, %q) = %q, want %q", tt.value, tt.tz, got, tt.want)
			}
		})
	}
	if !deadline.IsParseError(deadline.ToReferenceTime("nope", "UTC")) {
		t.Fatal("expected parse error marker")
	}
}

func TestSelectActive(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := dataset.TimelineEntry{Deadline: "2024-03-01 23:59:59", Comment: "first round"}
	future := dataset.TimelineEntry{Deadline: "2024-09-01 23:59:59", Comment: "second round"}
	future2 := dataset.TimelineEntry{Deadline: "2025-01-01 23:59:59", Comment: "third round"}

	entry, status := deadline.SelectActive([]dataset.TimelineEntry{past, future, future2}, "UTC", now)
	if status != deadline.StatusActive || entry != future {
		t.Fatalf("expected first future entry active, got %+v %s", entry, status)
	}

	entry, status = deadline.SelectActive([]dataset.TimelineEntry{past, {Deadline: "2024-04-01 12:00:00"}}, "UTC", now)
	if status != deadline.StatusExpired || entry.Deadline != "2024-04-01 12:00:00" {
		t.Fatalf("expected last entry expired, got %+v %s", entry, status)
	}

	entry, status = deadline.SelectActive(nil, "UTC", now)
	if status != deadline.StatusUndetermined || !entry.IsZero() {
		t.Fatalf("expected undetermined empty entry, got %+v %s", entry, status)
	}
	if status.Label() != "未定" {
		t.Fatalf("unexpected label %q", status.Label())
	}
}

func TestSelectActiveSkipsTBDAndBadDates(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []dataset.TimelineEntry{
		{Deadline: "TBD"},
		{Deadline: "not a date"},
		{Deadline: "2024-07-01 00:00:00"},
	}
	entry, status := deadline.SelectActive(entries, "UTC", now)
	if status != deadline.StatusActive || entry.Deadline != "2024-07-01 00:00:00" {
		t.Fatalf("expected third entry active, got %+v %s", entry, status)
	}

	entry, status = deadline.SelectActive(entries[:2], "UTC", now)
	if status != deadline.StatusExpired || entry.Deadline != "not a date" {
		t.Fatalf("expected last entry expired when nothing parses, got %+v %s", entry, status)
	}
}

func TestSelectActiveAppliesOffset(t *testing.T) {
	// 2024-06-01 10:00 AoE is 2024-06-01 22:00 UTC.
	entries := []dataset.TimelineEntry{{Deadline: "2024-06-01 10:00:00"}}
	before := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)
	after := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)

	if _, status := deadline.SelectActive(entries, "AoE", before); status != deadline.StatusActive {
		t.Fatalf("expected active before AoE deadline, got %s", status)
	}
	if _, status := deadline.SelectActive(entries, "AoE", after); status != deadline.StatusExpired {
		t.Fatalf("expected expired after AoE deadline, got %s", status)
	}
}
