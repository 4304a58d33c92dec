package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/types"
)

// handleReadings lists raw stored readings, newest first.
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := r.URL.Query().Get("deviceId")

	var since time.Time
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		since, err = time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			writeJSONError(w, "invalid since: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	readings, err := s.storage.ReadingsSince(ctx, deviceID, since, limit)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get readings",
			slog.String("deviceId", deviceID),
			slog.Any("error", err),
		)
		writeJSONError(w, "failed to get readings", http.StatusInternalServerError)
		return
	}
	if readings == nil {
		readings = []types.Reading{}
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, readings)
}
