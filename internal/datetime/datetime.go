// Package datetime converts the timestamp dialects found in import files to
// time.Time and renders timestamps for export. All values are UTC.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts written by the exporters.
const (
	TextLayout    = "2006/01/02 15:04:05"
	XMLDateLayout = "2006-01-02"
	XMLTimeLayout = "15:04:05"
	XMLLayout     = "2006-01-02T15:04:05"
)

// legacyLen is the length of "YYYY-MM-DD hh:mm:ss".
const legacyLen = 19

var (
	// ErrInvalidTimestamp is returned when no known dialect matches.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrOutOfRange is returned for timestamps outside the 32-bit epoch range.
	ErrOutOfRange = errors.New("timestamp out of range")
)

var layouts = []string{
	TextLayout,
	"2006-01-02 15:04:05",
	XMLLayout,
	time.RFC3339,
	"2006/01/02",
	XMLDateLayout,
	time.ANSIC,
}

var (
	minTime = time.Unix(0, 0).UTC()
	maxTime = time.Unix(1<<32-1, 0).UTC()
)

// Parse accepts "YYYY/MM/DD hh:mm:ss", "YYYY-MM-DD hh:mm:ss",
// "YYYY-MM-DDThh:mm:ss", RFC 3339, a bare date in either separator style,
// and the C library asctime form.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return checkRange(t.UTC(), s)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// ParseXML accepts only the XML schema form "YYYY-MM-DDThh:mm:ss".
func ParseXML(s string) (time.Time, error) {
	t, err := time.Parse(XMLLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return checkRange(t, s)
}

// ParseLegacy accepts "YYYY-MM-DD hh:mm:ss" as written by KeePass 1.x
// exports. Values of any other length are rejected.
func ParseLegacy(s string) (time.Time, error) {
	if len(s) != legacyLen {
		return time.Time{}, fmt.Errorf("%w: %q has length %d", ErrInvalidTimestamp, s, len(s))
	}
	return ParseXML(s[:10] + "T" + s[11:])
}

// FormatText renders t for text exports, or "" for the zero time.
func FormatText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TextLayout)
}

// FormatXML splits t into the date and time parts used by XML exports.
func FormatXML(t time.Time) (date, clock string) {
	t = t.UTC()
	return t.Format(XMLDateLayout), t.Format(XMLTimeLayout)
}

func checkRange(t time.Time, s string) (time.Time, error) {
	if t.Before(minTime) || t.After(maxTime) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return t, nil
}
