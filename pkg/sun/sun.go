// Package sun classifies instants as day or night using provider-reported
// sunrise/sunset events.
package sun

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vitorcape/homeclima/pkg/types"
)

// minuteOfDay extracts the minutes-since-local-midnight from a provider
// local-naive timestamp ("2025-08-30T06:14"). The provider reports events at
// minute resolution, so nothing finer is ever considered.
func minuteOfDay(localTS string) (int, error) {
	if len(localTS) < 16 || localTS[13] != ':' {
		return 0, fmt.Errorf("malformed local timestamp %q", localTS)
	}
	h, err := strconv.Atoi(localTS[11:13])
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q: %w", localTS, err)
	}
	m, err := strconv.Atoi(localTS[14:16])
	if err != nil {
		return 0, fmt.Errorf("malformed minute in %q: %w", localTS, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out-of-range time in %q", localTS)
	}
	return h*60 + m, nil
}

// IsDaytime reports whether ref falls in [sunrise, sunset) for its local day.
// Sunrise is inclusive, sunset exclusive; all three times are truncated to
// whole minutes before comparing.
func IsDaytime(ref time.Time, ev types.SunEvents, loc *time.Location) (bool, error) {
	sunrise, err := minuteOfDay(ev.Sunrise)
	if err != nil {
		return false, fmt.Errorf("bad sunrise: %w", err)
	}
	sunset, err := minuteOfDay(ev.Sunset)
	if err != nil {
		return false, fmt.Errorf("bad sunset: %w", err)
	}

	local := ref.In(loc)
	now := local.Hour()*60 + local.Minute()
	return now >= sunrise && now < sunset, nil
}

// Label returns the verbatim HH:MM substring of a provider local timestamp.
// The provider already reports local time for the site, so no conversion is
// applied. Malformed input yields an empty label.
func Label(localTS string) string {
	if len(localTS) < 16 {
		return ""
	}
	return localTS[11:16]
}
