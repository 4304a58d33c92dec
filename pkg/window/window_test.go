package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindowFor(t *testing.T) {
	t.Run("MiddleOfDay", func(t *testing.T) {
		// 2026-01-15 15:30 UTC is 12:30 in Sao Paulo (UTC-3)
		ref := time.Date(2026, 1, 15, 15, 30, 0, 0, time.UTC)
		w := DayWindowFor(ref, Location)

		assert.Equal(t, "2026-01-15", w.Date)
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, Location), w.Start)
		assert.Equal(t, time.Date(2026, 1, 15, 23, 59, 59, int(999*time.Millisecond), Location), w.End)
		assert.True(t, !ref.Before(w.Start) && !ref.After(w.End), "ref must be inside its own window")
	})

	t.Run("UTCDateDiffersFromLocalDate", func(t *testing.T) {
		// 2026-01-16 01:00 UTC is still 2026-01-15 22:00 in Sao Paulo
		ref := time.Date(2026, 1, 16, 1, 0, 0, 0, time.UTC)
		w := DayWindowFor(ref, Location)
		assert.Equal(t, "2026-01-15", w.Date)
	})

	t.Run("StartIsLocalMidnight", func(t *testing.T) {
		ref := time.Date(2026, 6, 1, 12, 0, 0, 0, Location)
		w := DayWindowFor(ref, Location)
		local := w.Start.In(Location)
		assert.Equal(t, 0, local.Hour())
		assert.Equal(t, 0, local.Minute())
		assert.Equal(t, 0, local.Second())
	})

	t.Run("DSTTransitionDate", func(t *testing.T) {
		// The offset must come from the tz rule at the date, not a constant.
		// America/New_York springs forward on 2026-03-08.
		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		ref := time.Date(2026, 3, 8, 15, 0, 0, 0, ny)
		w := DayWindowFor(ref, ny)
		assert.Equal(t, "2026-03-08", w.Date)
		assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, ny), w.Start)
		// The day is only 23 hours long; the window must still end on the
		// same calendar date.
		assert.Equal(t, "2026-03-08", w.End.In(ny).Format(time.DateOnly))
		assert.True(t, w.End.Sub(w.Start) < 24*time.Hour)
	})
}

func TestSinceMidnight(t *testing.T) {
	ref := time.Date(2026, 1, 15, 10, 45, 0, 0, Location)
	w := SinceMidnight(ref, Location)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, Location), w.Start)
	assert.Equal(t, ref, w.End)
	assert.Equal(t, "2026-01-15", w.Date)
}

func TestCalendarDateLabel(t *testing.T) {
	ref := time.Date(2026, 2, 3, 2, 0, 0, 0, time.UTC)
	// 02:00 UTC is 23:00 the previous day in Sao Paulo
	assert.Equal(t, "2026-02-02", CalendarDateLabel(ref, Location))
}

func TestParseDate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		d, err := ParseDate("2026-08-30", Location)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, Location), d)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, label := range []string{"30/08/2026", "2026-13-01", "yesterday", ""} {
			_, err := ParseDate(label, Location)
			assert.ErrorIs(t, err, ErrInvalidInput, label)
		}
	})
}

func TestWeekdayLabel(t *testing.T) {
	// 2026-08-30 is a Sunday
	d := time.Date(2026, 8, 30, 12, 0, 0, 0, Location)
	assert.Equal(t, "domingo", WeekdayLabel(d, Location))
	assert.Equal(t, "segunda-feira", WeekdayLabel(d.AddDate(0, 0, 1), Location))
}
