package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitorcape/homeclima/pkg/ingest"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/metrics"
)

// handleIngest accepts one reading from a device. The only authentication is
// the static shared secret the device fleet is flashed with.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.Header.Get("x-api-key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Limit body size to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	var p ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode ingest body", slog.Any("error", err))
		writeJSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	reading, err := ingest.Validate(p, s.now())
	if err != nil {
		if errors.Is(err, ingest.ErrValidation) {
			metrics.ReadingsRejected.WithLabelValues("http").Inc()
			log.Ctx(ctx).WarnContext(ctx, "rejected ingest payload",
				slog.String("deviceId", p.DeviceID),
				slog.Any("error", err),
			)
			writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to validate payload", slog.Any("error", err))
		writeJSONError(w, "failed to validate payload", http.StatusInternalServerError)
		return
	}

	if err := s.storage.InsertReading(ctx, reading); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to store reading",
			slog.String("deviceId", reading.DeviceID),
			slog.Any("error", err),
		)
		writeJSONError(w, "failed to store reading", http.StatusInternalServerError)
		return
	}
	metrics.ReadingsIngested.WithLabelValues("http").Inc()

	writeJSON(w, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
