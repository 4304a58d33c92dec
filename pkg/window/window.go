package window

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned when a caller-supplied date or instant cannot
// be parsed.
var ErrInvalidInput = errors.New("invalid date or instant")

// Location is the single civil timezone the whole system is scoped to.
var Location = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(fmt.Errorf("failed to load Sao Paulo location: %w", err))
	}
	return loc
}()

// DayWindow is an instant range covering (part of) one local calendar day.
type DayWindow struct {
	Start time.Time
	End   time.Time
	Date  string
}

// DayWindowFor returns the full-day window containing ref in loc: local
// midnight through 23:59:59.999 of the same calendar date. The offset is
// derived from the timezone rule at that date, so dates adjacent to DST
// transitions resolve correctly.
func DayWindowFor(ref time.Time, loc *time.Location) DayWindow {
	local := ref.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return DayWindow{
		Start: start,
		End:   end,
		Date:  start.Format(time.DateOnly),
	}
}

// SinceMidnight returns the window from local midnight up to ref itself,
// used for "so far today" aggregations.
func SinceMidnight(ref time.Time, loc *time.Location) DayWindow {
	w := DayWindowFor(ref, loc)
	w.End = ref
	return w
}

// CalendarDateLabel returns the canonical YYYY-MM-DD string for the instant's
// date in loc. This is the lookup key for the sun and forecast providers.
func CalendarDateLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// ParseDate parses a YYYY-MM-DD label and returns local noon of that date.
// Noon keeps the returned instant inside the intended calendar day even when
// the date's midnight falls on a DST transition.
func ParseDate(label string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, label, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidInput, label, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
}

var weekdayNames = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

// WeekdayLabel returns the pt-BR weekday name for the instant's date in loc.
func WeekdayLabel(t time.Time, loc *time.Location) string {
	return weekdayNames[t.In(loc).Weekday()]
}
