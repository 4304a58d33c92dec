package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitorcape/homeclima/pkg/ingest"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/meteo"
	"github.com/vitorcape/homeclima/pkg/server"
	"github.com/vitorcape/homeclima/pkg/storage"
	"github.com/vitorcape/homeclima/pkg/types"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
)

func main() {
	// init packages
	om := meteo.Configured()
	db := storage.Configured()
	sub := ingest.ConfiguredSubscriber()

	// init server
	srv := server.Configured(db, om, om)

	logDev := lflag.Bool("log-dev", false, "use a human-readable log format instead of JSON")

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}

	logger := slog.New(log.Handler(os.Stdout, level, *logDev))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := db.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	// readings arriving over MQTT land in the same storage as HTTP ingest
	sub.SetHandler(func(ctx context.Context, r types.Reading) error {
		return db.InsertReading(ctx, r)
	})
	go func() {
		if err := sub.Run(ctx); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "mqtt subscriber failed", "error", err)
			cancel()
		}
	}()

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
