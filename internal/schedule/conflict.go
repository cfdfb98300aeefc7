package schedule

import (
	"fmt"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

// CheckBooking validates candidate and rejects it if it overlaps another
// booking of the same venue on the same date. A booking with the same id as
// candidate is ignored so the check can run on updates.
func CheckBooking(existing []models.BookedSlot, candidate models.BookedSlot) error {
	if _, err := ParseDate(candidate.Date); err != nil {
		return err
	}
	want, err := NewInterval(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.ID == candidate.ID || b.Date != candidate.Date {
			continue
		}
		have, err := NewInterval(b.StartTime, b.EndTime)
		if err != nil {
			// legacy rows written before validation existed
			continue
		}
		if want.Overlaps(have) {
			return apperrors.Conflict(fmt.Sprintf("venue already booked on %s from %s to %s", b.Date, b.StartTime, b.EndTime))
		}
	}
	return nil
}

// CheckSlots validates every slot of a timetable and rejects pairs on the
// same day whose times overlap while sharing a venue or an instructor.
func CheckSlots(slots []models.Slot) error {
	intervals := make([]Interval, len(slots))
	for i, s := range slots {
		if !IsWeekday(s.Day) {
			return apperrors.Validation(fmt.Sprintf("invalid day %q", s.Day))
		}
		iv, err := NewInterval(s.StartTime, s.EndTime)
		if err != nil {
			return err
		}
		intervals[i] = iv
	}

	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.Day != b.Day || !intervals[i].Overlaps(intervals[j]) {
				continue
			}
			switch {
			case a.Venue == b.Venue:
				return apperrors.Conflict(fmt.Sprintf("venue %s is double-booked on %s %s-%s", a.Venue.Hex(), a.Day, b.StartTime, b.EndTime))
			case a.Instructor == b.Instructor:
				return apperrors.Conflict(fmt.Sprintf("instructor %s is double-booked on %s %s-%s", a.Instructor.Hex(), a.Day, b.StartTime, b.EndTime))
			}
		}
	}
	return nil
}
