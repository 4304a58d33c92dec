package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/stats"
	"github.com/vitorcape/homeclima/pkg/sun"
	"github.com/vitorcape/homeclima/pkg/types"
	"github.com/vitorcape/homeclima/pkg/window"
)

type homeSummaryResponse struct {
	Last         *types.Reading  `json:"last"`
	Stats        types.HomeStats `json:"stats"`
	SunriseLabel string          `json:"sunriseLabel"`
	SunsetLabel  string          `json:"sunsetLabel"`
	IsDay        bool            `json:"isDay"`
	Now          time.Time       `json:"now"`
}

type daySummaryResponse struct {
	Day          string         `json:"day"`
	Weekday      string         `json:"weekday"`
	SunriseLabel string         `json:"sunriseLabel"`
	SunsetLabel  string         `json:"sunsetLabel"`
	Stats        types.DayStats `json:"stats"`
}

// handleHomeSummary returns the latest reading, today's stats so far, and the
// current day/night state.
func (s *Server) handleHomeSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.now()
	win := window.SinceMidnight(now, s.loc)

	last, err := s.storage.LatestReading(ctx, "")
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get latest reading", slog.Any("error", err))
		writeJSONError(w, "failed to get latest reading", http.StatusInternalServerError)
		return
	}

	// open upper bound, the window ends at "now"
	agg, err := s.storage.AggregateWindow(ctx, win.Start, time.Time{})
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to aggregate window", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "failed to aggregate readings", http.StatusInternalServerError)
		return
	}

	ev, err := s.sun.EventsFor(ctx, win.Date)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "sun provider failed", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "sun provider failed", http.StatusBadGateway)
		return
	}

	isDay, err := sun.IsDaytime(now, ev, s.loc)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "bad sun events", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "sun provider failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, homeSummaryResponse{
		Last:         last,
		Stats:        stats.HomeShape(agg),
		SunriseLabel: sun.Label(ev.Sunrise),
		SunsetLabel:  sun.Label(ev.Sunset),
		IsDay:        isDay,
		Now:          now,
	})
}

// handleDaySummary returns min/max temperature and average humidity for one
// calendar day, defaulting to today.
func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	agg, err := s.storage.AggregateWindow(ctx, win.Start, win.End)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to aggregate window", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "failed to aggregate readings", http.StatusInternalServerError)
		return
	}

	ev, err := s.sun.EventsFor(ctx, win.Date)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "sun provider failed", slog.String("day", win.Date), slog.Any("error", err))
		writeJSONError(w, "sun provider failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, daySummaryResponse{
		Day:          win.Date,
		Weekday:      window.WeekdayLabel(ref, s.loc),
		SunriseLabel: sun.Label(ev.Sunrise),
		SunsetLabel:  sun.Label(ev.Sunset),
		Stats:        stats.DayShape(agg),
	})
}
