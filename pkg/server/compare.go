package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitorcape/homeclima/pkg/bucket"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/storage"
	"github.com/vitorcape/homeclima/pkg/types"
	"github.com/vitorcape/homeclima/pkg/window"
)

type forecastResponse struct {
	Day   string                `json:"day"`
	Items []types.ForecastPoint `json:"items"`
}

type compareResponse struct {
	Day  string                `json:"day"`
	Rows []types.HourBucketRow `json:"rows"`
}

// handleForecast returns the hourly temperature forecast for one calendar
// day, defaulting to today. A day with no forecast points is an empty list.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, err := s.resolveDay(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	day := window.CalendarDateLabel(ref, s.loc)

	points, err := s.forecast.ForecastFor(ctx, day)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "forecast provider failed", slog.String("day", day), slog.Any("error", err))
		writeJSONError(w, "forecast provider failed", http.StatusBadGateway)
		return
	}
	if points == nil {
		points = []types.ForecastPoint{}
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	writeJSON(w, forecastResponse{Day: day, Items: points})
}

// handleCompare merges the day's forecast with measured readings into 24
// hour-indexed rows.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := r.URL.Query().Get("deviceId")

	ref, err := s.resolveDay(r)
	if err != nil {
		if errors.Is(err, window.ErrInvalidInput) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSONError(w, "invalid date", http.StatusBadRequest)
		return
	}
	win := window.DayWindowFor(ref, s.loc)

	points, err := s.forecast.ForecastFor(ctx, win.Date)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "forecast provider failed", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "forecast provider failed", http.StatusBadGateway)
		return
	}

	readings, err := s.storage.ReadingsSince(ctx, deviceID, win.Start, storage.MaxReadingsLimit)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get readings",
			slog.String("day", win.Date),
			slog.String("deviceId", deviceID),
			slog.Any("error", err),
		)
		writeJSONError(w, "failed to get readings", http.StatusInternalServerError)
		return
	}

	// storage only bounds the lower end, so drop anything past the day's
	// window; the bucketizer is last-write-wins in input order, so feed it
	// ascending to let the newest reading of each hour win
	ascending := make([]types.Reading, 0, len(readings))
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		if r.TS.After(win.End) {
			continue
		}
		ascending = append(ascending, r)
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, compareResponse{
		Day:  win.Date,
		Rows: bucket.BuildComparison(points, ascending, s.loc),
	})
}
