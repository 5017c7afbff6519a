package deadline

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// TBD marks a deadline that has not been announced.
	TBD = "TBD"

	// ReferenceOffsetHours is the fixed offset of the display timezone.
	ReferenceOffsetHours = 8
	// ReferenceZoneLabel is appended to every converted deadline.
	ReferenceZoneLabel = "CST"

	referenceLayout = "2006-01-02 15:04:05"
	parseErrorTag   = " (Parse Error)"
)

var aliasOffsets = map[string]int{
	"AOE": -12,
	"EST": -5,
	"EDT": -4,
	"CST": 8,
	"JST": 9,
}

// ResolveOffset returns the UTC offset in whole hours for a timezone label.
// Known aliases win over the UTC±N form; anything unrecognized resolves to 0.
func ResolveOffset(label string) int {
	tz := strings.ToUpper(strings.TrimSpace(label))
	if tz == "" {
		return 0
	}
	if offset, ok := aliasOffsets[tz]; ok {
		return offset
	}
	rest, ok := strings.CutPrefix(tz, "UTC")
	if !ok || rest == "" {
		return 0
	}
	offset, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0
	}
	return offset
}

// parseWallClock interprets value as a timezone-less wall clock reading.
func parseWallClock(value string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(value), time.UTC)
}

// ToReferenceTime converts a local deadline into the reference timezone and
// formats it for display. Empty and TBD values yield TBD; unparseable values are
// returned with a parse-error marker instead of failing.
func ToReferenceTime(value, tzLabel string) string {
	if strings.TrimSpace(value) == "" || value == TBD {
		return TBD
	}
	local, err := parseWallClock(value)
	if err != nil {
		return value + parseErrorTag
	}
	shift := time.Duration(ReferenceOffsetHours-ResolveOffset(tzLabel)) * time.Hour
	return local.Add(shift).Format(referenceLayout) + " (" + ReferenceZoneLabel + ")"
}

// IsParseError reports whether a ToReferenceTime result carries the parse-error marker.
func IsParseError(formatted string) bool {
	return strings.HasSuffix(formatted, parseErrorTag)
}

// ToUTC converts a local deadline to an absolute instant.
func ToUTC(value, tzLabel string) (time.Time, error) {
	local, err := parseWallClock(value)
	if err != nil {
		return time.Time{}, err
	}
	return local.Add(-time.Duration(ResolveOffset(tzLabel)) * time.Hour), nil
}
