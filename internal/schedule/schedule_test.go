package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, m)

	for _, bad := range []string{"", "8.30", "24:00", "12:60", "noon"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, bad)
	}
}

func TestNewInterval(t *testing.T) {
	_, err := NewInterval("10:00", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = NewInterval("11:00", "10:00")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	iv, err := NewInterval("10:00", "11:30")
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 600, End: 690}, iv)
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{600, 660}, Interval{700, 760}, false},
		{"touching", Interval{600, 660}, Interval{660, 720}, false},
		{"partial", Interval{600, 660}, Interval{630, 690}, true},
		{"contained", Interval{600, 720}, Interval{630, 660}, true},
		{"equal", Interval{600, 660}, Interval{600, 660}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestCheckBooking(t *testing.T) {
	existing := []models.BookedSlot{
		{ID: primitive.NewObjectID(), Date: "2026-10-19", StartTime: "09:00", EndTime: "11:00"},
	}

	err := CheckBooking(existing, models.BookedSlot{Date: "2026-10-19", StartTime: "10:00", EndTime: "12:00"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.NoError(t, CheckBooking(existing, models.BookedSlot{Date: "2026-10-19", StartTime: "11:00", EndTime: "12:00"}))
	assert.NoError(t, CheckBooking(existing, models.BookedSlot{Date: "2026-10-20", StartTime: "09:00", EndTime: "11:00"}))

	// rebooking the same slot id is an update, not a clash
	same := existing[0]
	same.EndTime = "12:00"
	assert.NoError(t, CheckBooking(existing, same))

	err = CheckBooking(nil, models.BookedSlot{Date: "19/10/2026", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCheckSlots(t *testing.T) {
	venue, other := primitive.NewObjectID(), primitive.NewObjectID()
	lecturer, lecturer2 := primitive.NewObjectID(), primitive.NewObjectID()

	slot := func(day, start, end string, v, l primitive.ObjectID) models.Slot {
		return models.Slot{ID: primitive.NewObjectID(), Day: day, StartTime: start, EndTime: end, Venue: v, Instructor: l}
	}

	t.Run("no clash", func(t *testing.T) {
		err := CheckSlots([]models.Slot{
			slot("Monday", "08:00", "10:00", venue, lecturer),
			slot("Monday", "10:00", "12:00", venue, lecturer),
			slot("Tuesday", "08:00", "10:00", venue, lecturer),
			slot("Monday", "09:00", "11:00", other, lecturer2),
		})
		assert.NoError(t, err)
	})

	t.Run("venue clash", func(t *testing.T) {
		err := CheckSlots([]models.Slot{
			slot("Monday", "08:00", "10:00", venue, lecturer),
			slot("Monday", "09:00", "11:00", venue, lecturer2),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("instructor clash", func(t *testing.T) {
		err := CheckSlots([]models.Slot{
			slot("Friday", "08:00", "10:00", venue, lecturer),
			slot("Friday", "09:30", "10:30", other, lecturer),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("bad day", func(t *testing.T) {
		err := CheckSlots([]models.Slot{slot("Funday", "08:00", "10:00", venue, lecturer)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
