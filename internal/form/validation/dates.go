package validation

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict YYYY-MM-DD calendar date in UTC. Shape-valid but
// impossible dates such as 2025-02-30 are rejected.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !dateShape.MatchString(s) {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// today truncates now to its calendar date, expressed in UTC so it compares
// with dates from ParseDate.
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// AgeOn returns completed years between birth and now. The year count drops by
// one until the birthday's month and day are reached.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
