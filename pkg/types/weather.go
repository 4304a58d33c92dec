package types

// LocalTimeLayout is the minute-resolution local-naive timestamp format the
// weather provider reports ("2025-08-30T06:14"). The provider already converts
// to the site's timezone, so these strings are never shifted again.
const LocalTimeLayout = "2006-01-02T15:04"

// SunEvents holds the sunrise and sunset for one calendar date as the
// provider's local-naive timestamps.
type SunEvents struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// ForecastPoint is one on-the-hour forecast sample for the day.
// Temperature is nil when the provider reported no value for that hour.
type ForecastPoint struct {
	LocalTime   string   `json:"iso"`
	HourLabel   string   `json:"hourLabel"`
	Temperature *float64 `json:"temperature"`
}

// HourBucketRow is one of the 24 hour-of-day slots in a forecast-vs-measured
// comparison. A nil temperature means no data for that side of the hour; it is
// never defaulted to 0 so charts can render a gap.
type HourBucketRow struct {
	HourIndex   int      `json:"hourIndex"`
	ForecastTmp *float64 `json:"forecastTemperature"`
	MeasuredTmp *float64 `json:"measuredTemperature"`
}
