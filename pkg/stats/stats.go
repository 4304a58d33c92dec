// Package stats computes min/max/avg/count summaries over readings in a
// window. The accumulator is single-pass so the storage layer can stream a
// query result through it without materializing the window.
package stats

import (
	"github.com/vitorcape/homeclima/pkg/types"
)

// Accumulator folds readings into a window aggregate one at a time.
// The zero value is ready to use and represents an empty window.
type Accumulator struct {
	tMin, tMax float64
	hMin, hMax float64
	hSum       float64
	count      int
}

// Add folds one reading into the aggregate.
func (a *Accumulator) Add(temperature, humidity float64) {
	if a.count == 0 || temperature < a.tMin {
		a.tMin = temperature
	}
	if a.count == 0 || temperature > a.tMax {
		a.tMax = temperature
	}
	if a.count == 0 || humidity < a.hMin {
		a.hMin = humidity
	}
	if a.count == 0 || humidity > a.hMax {
		a.hMax = humidity
	}
	a.hSum += humidity
	a.count++
}

// AddReading folds one stored reading into the aggregate.
func (a *Accumulator) AddReading(r types.Reading) {
	a.Add(r.Temperature, r.Humidity)
}

// Aggregate returns the raw aggregate row. An empty window yields nil min/max
// fields and count 0; it is never an error.
func (a *Accumulator) Aggregate() types.WindowAggregate {
	if a.count == 0 {
		return types.WindowAggregate{}
	}
	tMin, tMax := a.tMin, a.tMax
	hMin, hMax := a.hMin, a.hMax
	return types.WindowAggregate{
		TMin:  &tMin,
		TMax:  &tMax,
		HMin:  &hMin,
		HMax:  &hMax,
		HSum:  a.hSum,
		Count: a.count,
	}
}

// DayShape shapes a raw aggregate into the day-summary statistics:
// min/max temperature plus the unrounded arithmetic mean of humidity.
func DayShape(agg types.WindowAggregate) types.DayStats {
	s := types.DayStats{Count: agg.Count}
	if agg.Count == 0 {
		return s
	}
	s.TMin = agg.TMin
	s.TMax = agg.TMax
	avg := agg.HSum / float64(agg.Count)
	s.HAvg = &avg
	return s
}

// HomeShape shapes a raw aggregate into the home-summary statistics:
// min/max for both temperature and humidity.
func HomeShape(agg types.WindowAggregate) types.HomeStats {
	s := types.HomeStats{Count: agg.Count}
	if agg.Count == 0 {
		return s
	}
	s.TMin = agg.TMin
	s.TMax = agg.TMax
	s.HMin = agg.HMin
	s.HMax = agg.HMax
	return s
}
