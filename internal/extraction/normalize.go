// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docvars/docvars/internal/vocab"
)

var (
	monthDate = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),\s*(\d{4})$`)
	months    = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// ParseDate parses "January 5, 2025", "Jan 5, 2025" and "Sept. 5, 2025".
func ParseDate(raw string) (time.Time, bool) {
	m := monthDate.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil || len(m[1]) < 3 {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(m[1][:3])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate returns the ISO form and a short display form of a date.
func NormalizeDate(raw string) (iso, display string, ok bool) {
	t, ok := ParseDate(raw)
	if !ok {
		return "", "", false
	}
	return t.Format(time.DateOnly), t.Format("Jan 2, 2006"), true
}

// IsDateField reports whether a schema field holds a calendar date.
func IsDateField(field string) bool {
	base, _ := vocab.SplitFieldSuffix(field)
	return strings.HasSuffix(base, "Date")
}

func isDurationField(field string) bool {
	base, _ := vocab.SplitFieldSuffix(field)
	return strings.Contains(strings.ToLower(base), "duration")
}

// NormalizeBySchema canonicalizes a raw value for comparison: dates become
// ISO dates, durations have their whitespace collapsed and everything else
// is trimmed.
func NormalizeBySchema(field, raw string) string {
	switch {
	case IsDateField(field):
		if iso, _, ok := NormalizeDate(raw); ok {
			return iso
		}
		return strings.TrimSpace(raw)
	case isDurationField(field):
		return strings.Join(strings.Fields(raw), " ")
	default:
		return strings.TrimSpace(raw)
	}
}
