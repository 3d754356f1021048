package economy

import "time"

// Clock supplies the current time. Tests inject a fixed one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

const dateLayout = "2006-01-02"

// legacyDateLayout matches the browser's Date.toDateString output found in
// older gemsData records.
const legacyDateLayout = "Mon Jan 02 2006"

// DateKey formats t as a calendar date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// yesterdayKey returns the calendar date before t in loc. Going through
// time.Date keeps DST transitions from skipping or repeating a day.
func yesterdayKey(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, loc).Format(dateLayout)
}

// normalizeDate accepts either stored date form and returns YYYY-MM-DD.
func normalizeDate(s string) (string, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), true
	}
	if t, err := time.Parse(legacyDateLayout, s); err == nil {
		return t.Format(dateLayout), true
	}
	return "", false
}
