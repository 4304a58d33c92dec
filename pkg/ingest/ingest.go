// Package ingest validates raw device payloads and normalizes them into
// readings before they are handed to storage.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vitorcape/homeclima/pkg/types"
)

// ErrValidation is returned when a payload is missing required numeric
// fields. The boundary maps it to an unprocessable-input response.
var ErrValidation = errors.New("invalid reading payload")

// Payload is a raw device payload as received over HTTP or MQTT.
// Temperature and humidity are decoded loosely so that a string "21.5" can be
// rejected as a validation failure rather than a transport error.
type Payload struct {
	DeviceID    string `json:"deviceId"`
	Temperature any    `json:"temperature"`
	Humidity    any    `json:"humidity"`
	TS          string `json:"ts"`
}

func numeric(field string, v any) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrValidation, field)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrValidation, field)
	}
	return f, nil
}

// Validate checks a raw payload and returns the normalized reading.
// The device id falls back to the default identifier when absent and a
// missing timestamp defaults to now; a present timestamp is parsed and used
// verbatim, with no future/past policing.
func Validate(p Payload, now time.Time) (types.Reading, error) {
	temperature, err := numeric("temperature", p.Temperature)
	if err != nil {
		return types.Reading{}, err
	}
	humidity, err := numeric("humidity", p.Humidity)
	if err != nil {
		return types.Reading{}, err
	}

	deviceID := p.DeviceID
	if deviceID == "" {
		deviceID = types.DefaultDeviceID
	}

	ts := now
	if p.TS != "" {
		ts, err = time.Parse(time.RFC3339, p.TS)
		if err != nil {
			return types.Reading{}, fmt.Errorf("%w: bad ts %q: %v", ErrValidation, p.TS, err)
		}
	}

	return types.Reading{
		DeviceID:    deviceID,
		Temperature: temperature,
		Humidity:    humidity,
		TS:          ts,
	}, nil
}
