// Package bucket merges an hourly forecast series and a measured reading
// series into 24 hour-of-day slots for same-day comparison.
package bucket

import (
	"strconv"
	"time"

	"github.com/vitorcape/homeclima/pkg/types"
)

// MeasuredHourIndex returns the hour-of-day slot for a measured reading:
// the nearest hour in loc, rounding up from minute 30 and wrapping 23 to 0.
func MeasuredHourIndex(ts time.Time, loc *time.Location) int {
	local := ts.In(loc)
	h := local.Hour()
	if local.Minute() >= 30 {
		h++
	}
	return h % 24
}

// forecastHourIndex reads the hour straight off the on-the-hour local
// timestamp; no rounding is involved on the forecast side.
func forecastHourIndex(localTime string) (int, bool) {
	if len(localTime) < 13 {
		return 0, false
	}
	h, err := strconv.Atoi(localTime[11:13])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// BuildComparison aligns a forecast series and a measured series into exactly
// 24 rows ordered by hour index. Both sides are processed in input order and
// a later entry for the same hour overwrites an earlier one; no averaging is
// performed. Hours with data on only one side keep the other side absent.
// The result is a pure function of the inputs.
func BuildComparison(forecast []types.ForecastPoint, measured []types.Reading, loc *time.Location) []types.HourBucketRow {
	var forecastSlots, measuredSlots [24]*float64

	for _, p := range forecast {
		h, ok := forecastHourIndex(p.LocalTime)
		if !ok {
			continue
		}
		forecastSlots[h] = p.Temperature
	}

	for _, r := range measured {
		temp := r.Temperature
		measuredSlots[MeasuredHourIndex(r.TS, loc)] = &temp
	}

	rows := make([]types.HourBucketRow, 24)
	for h := 0; h < 24; h++ {
		rows[h] = types.HourBucketRow{
			HourIndex:   h,
			ForecastTmp: forecastSlots[h],
			MeasuredTmp: measuredSlots[h],
		}
	}
	return rows
}
