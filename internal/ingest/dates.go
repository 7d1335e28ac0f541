package ingest

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Plausibility window for extracted deadlines: a little in the past (grace
// for recently closed calls), up to roughly two years ahead.
const (
	plausiblePastDays   = 90
	plausibleFutureDays = 720
)

var (
	isoDateRe   = regexp.MustCompile(`\b(20\d{2})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](20\d{2})\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?,?\s+(20\d{2})\b`)
	monthDayRe  = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+(\d{1,2}),?\s+(20\d{2})\b`)
)

// ResolveDate parses a messy human-written date into ISO YYYY-MM-DD.
// Ambiguous numeric dates are read day-first. Returns false when nothing
// parseable is found; it never errors to the caller.
func ResolveDate(raw string) (string, bool) {
	t, ok := parseDateRobust(raw)
	if !ok {
		return "", false
	}
	return t.Format(isoDate), true
}

// ResolvePlausibleDate is ResolveDate with the plausibility window applied:
// dates more than ~90 days past or ~720 days ahead of now are rejected.
func ResolvePlausibleDate(raw string, now time.Time) (string, bool) {
	t, ok := parseDateRobust(raw)
	if !ok || !plausibleDate(t, now) {
		return "", false
	}
	return t.Format(isoDate), true
}

// EarliestPlausible resolves every candidate, drops the implausible ones and
// returns the earliest survivor as ISO, or "" when none survive. Earliest
// wins because the first upcoming deadline is the actionable one.
func EarliestPlausible(candidates []string, now time.Time) string {
	var best time.Time
	found := false
	for _, raw := range candidates {
		t, ok := parseDateRobust(raw)
		if !ok || !plausibleDate(t, now) {
			continue
		}
		if !found || t.Before(best) {
			best = t
			found = true
		}
	}
	if !found {
		return ""
	}
	return best.Format(isoDate)
}

func plausibleDate(t, now time.Time) bool {
	lo := now.AddDate(0, 0, -plausiblePastDays)
	hi := now.AddDate(0, 0, plausibleFutureDays)
	return !t.Before(lo) && !t.After(hi)
}

// parseDateRobust attempts to parse dates in multiple formats. Ordinal
// suffixes are stripped and exotic dashes normalized before parsing.
func parseDateRobust(text string) (time.Time, bool) {
	text = cleanDateString(text)
	if text == "" {
		return time.Time{}, false
	}

	// ISO forms first (most reliable).
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(isoDate, text); err == nil {
		return t, true
	}

	// Day-first English formats.
	formats := []string{
		"2 January 2006",
		"02 January 2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2/1/2006",
		"02/01/2006",
		"2-1-2006",
		"02-01-2006",
		"2.1.2006",
		"02.01.2006",
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, text); err == nil {
			return t, true
		}
	}

	return parseDateWithRegex(text)
}

// parseDateWithRegex extracts a date embedded in surrounding prose.
func parseDateWithRegex(text string) (time.Time, bool) {
	if m := isoDateRe.FindStringSubmatch(text); len(m) == 4 {
		if t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return t, true
		}
	}

	// Numeric with separators: day-first, month-first as fallback for
	// sources that write 08/31/2025.
	if m := slashDateRe.FindStringSubmatch(text); len(m) == 4 {
		if t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
			return t, true
		}
		if t, err := time.Parse("1/2/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
			return t, true
		}
	}

	// "15 March 2026"
	if m := dayMonthRe.FindStringSubmatch(text); len(m) == 4 {
		dateStr := m[1] + " " + strings.TrimSuffix(m[2], ".") + " " + m[3]
		if t, err := time.Parse("2 January 2006", dateStr); err == nil {
			return t, true
		}
		if t, err := time.Parse("2 Jan 2006", dateStr); err == nil {
			return t, true
		}
	}

	// "March 15, 2026"
	if m := monthDayRe.FindStringSubmatch(text); len(m) == 4 {
		dateStr := strings.TrimSuffix(m[1], ".") + " " + m[2] + " " + m[3]
		if t, err := time.Parse("January 2 2006", dateStr); err == nil {
			return t, true
		}
		if t, err := time.Parse("Jan 2 2006", dateStr); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// cleanDateString strips label prefixes, ordinal suffixes and normalizes
// dashes so the format lists have a fighting chance.
func cleanDateString(s string) string {
	prefixes := []string{
		"Closing date:", "Deadline:", "Due date:", "Last date:",
		"Apply by:", "Expires:", "Ends:", "Submission deadline:",
	}
	sLower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(sLower, strings.ToLower(p)); idx != -1 {
			s = s[idx+len(p):]
			sLower = strings.ToLower(s)
		}
	}

	s = strings.NewReplacer("–", "-", "—", "-", "‒", "-").Replace(s)
	s = stripOrdinals(s)
	return normalizeSpace(s)
}
