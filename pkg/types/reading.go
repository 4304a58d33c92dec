package types

import "time"

// DefaultDeviceID is assigned to readings whose payload carried no device
// identifier. Matches the id the first-generation firmware shipped with.
const DefaultDeviceID = "esp32-001"

// Reading is a single environmental sample reported by a device.
// Readings are immutable once stored.
type Reading struct {
	DeviceID    string    `json:"deviceId"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	TS          time.Time `json:"ts"`
}

// WindowAggregate is the raw single-pass aggregate over the readings in a
// time window. Min/max fields are nil when the window held no readings.
type WindowAggregate struct {
	TMin  *float64
	TMax  *float64
	HMin  *float64
	HMax  *float64
	HSum  float64
	Count int
}

// DayStats is the day-summary statistics shape. All numeric fields are nil
// when Count is 0; an empty day is a valid result, not an error.
type DayStats struct {
	TMin  *float64 `json:"tMin"`
	TMax  *float64 `json:"tMax"`
	HAvg  *float64 `json:"hAvg"`
	Count int      `json:"count"`
}

// HomeStats is the home-summary statistics shape.
type HomeStats struct {
	TMin  *float64 `json:"tMin"`
	TMax  *float64 `json:"tMax"`
	HMin  *float64 `json:"hMin"`
	HMax  *float64 `json:"hMax"`
	Count int      `json:"count"`
}
