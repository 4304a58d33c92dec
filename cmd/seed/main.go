package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/storage"
	"github.com/vitorcape/homeclima/pkg/types"
	"github.com/vitorcape/homeclima/pkg/window"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	db := storage.Configured()
	lflag.Configure()

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock readings")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Every 10 minutes from local midnight to now
	now := time.Now()
	start := window.SinceMidnight(now, window.Location).Start

	const (
		// Daily temperature swing, coolest right before sunrise and
		// peaking mid-afternoon
		tempMin  = 16.0
		tempMax  = 29.0
		baseHum  = 65.0
		humSwing = 20.0
	)

	count := 0
	for t := start; t.Before(now); t = t.Add(10 * time.Minute) {
		local := t.In(window.Location)
		hourFrac := float64(local.Hour()) + float64(local.Minute())/60.0

		// Sine curve with its trough at 05:00 and crest at 17:00
		phase := (hourFrac - 5.0) / 24.0 * 2 * math.Pi
		warm := (1 - math.Cos(phase)) / 2

		temperature := tempMin + (tempMax-tempMin)*warm + (rng.Float64()-0.5)*0.6
		// Humidity runs opposite the temperature
		humidity := baseHum + humSwing*(0.5-warm) + (rng.Float64()-0.5)*3.0
		humidity = math.Max(20, math.Min(95, humidity))

		r := types.Reading{
			DeviceID:    types.DefaultDeviceID,
			Temperature: math.Round(temperature*10) / 10,
			Humidity:    math.Round(humidity*10) / 10,
			TS:          t,
		}
		if err := db.InsertReading(ctx, r); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed reading", "error", err)
			os.Exit(1)
		}
		count++

		fmt.Printf("Seeded reading at %s: %.1fC %.1f%%\n",
			local.Format(time.Kitchen), r.Temperature, r.Humidity)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded mock readings successfully", "count", count)
}
