package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/types"
)

const (
	// DefaultReadingsLimit applies when a listing query gives no limit.
	DefaultReadingsLimit = 50
	// MaxReadingsLimit caps listing queries regardless of what was asked.
	MaxReadingsLimit = 500
)

// Database defines the interface for persisting and querying readings.
// Readings are append-only; nothing here updates or deletes them.
type Database interface {
	// InsertReading appends one validated reading.
	InsertReading(ctx context.Context, r types.Reading) error

	// LatestReading returns the most recent reading, optionally scoped to a
	// device. A store with no matching readings returns nil, not an error.
	LatestReading(ctx context.Context, deviceID string) (*types.Reading, error)

	// ReadingsSince returns readings at or after since, newest first,
	// optionally scoped to a device. The limit is clamped to MaxReadingsLimit
	// and defaults to DefaultReadingsLimit when non-positive.
	ReadingsSince(ctx context.Context, deviceID string, since time.Time, limit int) ([]types.Reading, error)

	// AggregateWindow computes the raw min/max/sum/count aggregate over
	// readings in [start, end] in a single pass. A zero end means no upper
	// bound. An empty window is a valid zero-count aggregate.
	AggregateWindow(ctx context.Context, start, end time.Time) (types.WindowAggregate, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
