// Package timefmt converts between epoch seconds and ISO-8601 UTC timestamps.
// Page data mixes both representations freely, so both directions accept
// either form and fall back to a zero value instead of returning an error.
package timefmt

import (
	"strconv"
	"strings"
	"time"
)

const (
	isoMillisLayout = "2006-01-02T15:04:05.000Z"
	epochZeroISO    = "1970-01-01T00:00:00.000Z"
)

// ToEpochString accepts an epoch value (numeric string) or an ISO-8601
// timestamp and returns epoch seconds as a string. Unparseable input
// yields "0".
func ToEpochString(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "0"
	}
	// Numeric-first: a value that round-trips as a number is already epoch.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	if t, ok := parseISO(value); ok {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return "0"
}

// ToISOUTC accepts epoch seconds or an ISO-8601 timestamp and returns
// `YYYY-MM-DDTHH:MM:SS.000Z`. Unparseable input yields the UNIX epoch.
func ToISOUTC(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return epochZeroISO
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Unix(int64(f), 0).UTC().Format(isoMillisLayout)
	}
	if t, ok := parseISO(value); ok {
		return t.UTC().Format(isoMillisLayout)
	}
	return epochZeroISO
}

// UTCNowISO returns the current UTC time as `YYYY-MM-DDTHH:MM:SSZ`, used for
// timestamped default output names.
func UTCNowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// parseISO handles Z or numeric offsets and optional fractional seconds.
// Timestamps with no zone designator are read as UTC.
func parseISO(value string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
