// Package schedule validates clock times and detects overlapping bookings.
package schedule

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Interval is a half-open [Start, End) range in minutes after midnight.
type Interval struct {
	Start int
	End   int
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate checks a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// NewInterval parses both ends and requires start < end.
func NewInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, apperrors.Validation("start time must be before end time")
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether the two intervals share at least one minute.
// Touching intervals (10:00-11:00, 11:00-12:00) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// IsWeekday accepts the capitalised English day names.
func IsWeekday(day string) bool {
	return lo.Contains(Weekdays, day)
}
