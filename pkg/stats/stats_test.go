package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitorcape/homeclima/pkg/types"
)

func TestAccumulator(t *testing.T) {
	t.Run("EmptyWindow", func(t *testing.T) {
		var a Accumulator
		agg := a.Aggregate()

		assert.Equal(t, 0, agg.Count)
		assert.Nil(t, agg.TMin)
		assert.Nil(t, agg.TMax)
		assert.Nil(t, agg.HMin)
		assert.Nil(t, agg.HMax)
	})

	t.Run("SingleReading", func(t *testing.T) {
		var a Accumulator
		a.Add(21.5, 60)
		agg := a.Aggregate()

		require.Equal(t, 1, agg.Count)
		assert.Equal(t, 21.5, *agg.TMin)
		assert.Equal(t, 21.5, *agg.TMax)
		assert.Equal(t, 60.0, *agg.HMin)
		assert.Equal(t, 60.0, *agg.HMax)
		assert.Equal(t, 60.0, agg.HSum)
	})

	t.Run("MultipleReadings", func(t *testing.T) {
		var a Accumulator
		for _, r := range []types.Reading{
			{Temperature: 14.0, Humidity: 50, TS: time.Now()},
			{Temperature: 16.0, Humidity: 55, TS: time.Now()},
			{Temperature: 12.5, Humidity: 70, TS: time.Now()},
		} {
			a.AddReading(r)
		}
		agg := a.Aggregate()

		require.Equal(t, 3, agg.Count)
		assert.Equal(t, 12.5, *agg.TMin)
		assert.Equal(t, 16.0, *agg.TMax)
		assert.Equal(t, 50.0, *agg.HMin)
		assert.Equal(t, 70.0, *agg.HMax)
		assert.Equal(t, 175.0, agg.HSum)
	})

	t.Run("NegativeTemperatures", func(t *testing.T) {
		var a Accumulator
		a.Add(-2.0, 80)
		a.Add(1.0, 85)
		agg := a.Aggregate()
		assert.Equal(t, -2.0, *agg.TMin)
		assert.Equal(t, 1.0, *agg.TMax)
	})
}

func TestDayShape(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := DayShape(types.WindowAggregate{})
		assert.Equal(t, 0, s.Count)
		assert.Nil(t, s.TMin)
		assert.Nil(t, s.TMax)
		assert.Nil(t, s.HAvg)

		// absent fields must encode as null, never 0
		b, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, `{"tMin":null,"tMax":null,"hAvg":null,"count":0}`, string(b))
	})

	t.Run("AverageIsUnrounded", func(t *testing.T) {
		var a Accumulator
		a.Add(20, 50)
		a.Add(20, 51)
		a.Add(20, 51)

		s := DayShape(a.Aggregate())
		require.NotNil(t, s.HAvg)
		assert.InDelta(t, 152.0/3.0, *s.HAvg, 1e-12)
	})
}

func TestHomeShape(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := HomeShape(types.WindowAggregate{})
		assert.Equal(t, 0, s.Count)
		assert.Nil(t, s.TMin)
		assert.Nil(t, s.HMin)
		assert.Nil(t, s.HMax)
	})

	t.Run("Shaped", func(t *testing.T) {
		var a Accumulator
		a.Add(14.0, 50)
		a.Add(16.0, 55)

		s := HomeShape(a.Aggregate())
		require.Equal(t, 2, s.Count)
		assert.Equal(t, 14.0, *s.TMin)
		assert.Equal(t, 16.0, *s.TMax)
		assert.Equal(t, 50.0, *s.HMin)
		assert.Equal(t, 55.0, *s.HMax)
	})
}
