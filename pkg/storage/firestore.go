package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/stats"
	"github.com/vitorcape/homeclima/pkg/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const readingsCollection = "readings"

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Readings are stored as JSON blobs with the timestamp and device
// id duplicated as top-level fields for querying.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID verification could be here, but we allow empty if inferred.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// readingDocID builds the document ID from the reading's instant and device.
// The timestamp prefix keeps ids lexicographically ordered by time; the
// device suffix keeps simultaneous readings from different devices distinct.
func readingDocID(r types.Reading) string {
	return r.TS.UTC().Format(time.RFC3339Nano) + "_" + r.DeviceID
}

// InsertReading appends one reading to the "readings" collection.
func (f *FirestoreProvider) InsertReading(ctx context.Context, r types.Reading) error {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	coll := f.client.Collection(readingsCollection)
	_, err = coll.Doc(readingDocID(r)).Set(ctx, map[string]interface{}{
		"json":     string(jsonBytes),
		"ts":       r.TS,
		"deviceId": r.DeviceID,
	})
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

func readingFromDoc(ctx context.Context, doc *firestore.DocumentSnapshot) (types.Reading, error) {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "reading doc missing json", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
		return types.Reading{}, fmt.Errorf("reading document %s missing 'json' field: %w", doc.Ref.ID, err)
	}

	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "reading doc json not string", slog.String("docID", doc.Ref.ID))
		return types.Reading{}, fmt.Errorf("reading document %s 'json' field is not string", doc.Ref.ID)
	}

	var r types.Reading
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal reading", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
		return types.Reading{}, fmt.Errorf("failed to unmarshal reading (id=%s): %w", doc.Ref.ID, err)
	}
	return r, nil
}

// LatestReading returns the most recent reading, optionally for one device.
func (f *FirestoreProvider) LatestReading(ctx context.Context, deviceID string) (*types.Reading, error) {
	q := f.client.Collection(readingsCollection).Query
	if deviceID != "" {
		q = q.Where("deviceId", "==", deviceID)
	}
	iter := q.
		OrderBy("ts", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done || status.Code(err) == codes.NotFound {
		// an empty or not-yet-created store is not an error
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	r, err := readingFromDoc(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ReadingsSince returns readings at or after since, newest first.
func (f *FirestoreProvider) ReadingsSince(ctx context.Context, deviceID string, since time.Time, limit int) ([]types.Reading, error) {
	if limit <= 0 {
		limit = DefaultReadingsLimit
	}
	if limit > MaxReadingsLimit {
		limit = MaxReadingsLimit
	}

	q := f.client.Collection(readingsCollection).Query
	if deviceID != "" {
		q = q.Where("deviceId", "==", deviceID)
	}
	iter := q.
		Where("ts", ">=", since).
		OrderBy("ts", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var readings []types.Reading
	for {
		doc, err := iter.Next()
		if err == iterator.Done || status.Code(err) == codes.NotFound {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating readings: %w", err)
		}

		r, err := readingFromDoc(ctx, doc)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// AggregateWindow streams the readings in [start, end] through a single-pass
// accumulator. Firestore's server-side aggregations have no min/max, so the
// pass happens over the document iterator instead of materializing the
// window.
func (f *FirestoreProvider) AggregateWindow(ctx context.Context, start, end time.Time) (types.WindowAggregate, error) {
	q := f.client.Collection(readingsCollection).
		Where("ts", ">=", start)
	if !end.IsZero() {
		q = q.Where("ts", "<=", end)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var acc stats.Accumulator
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return types.WindowAggregate{}, fmt.Errorf("error aggregating readings: %w", err)
		}

		r, err := readingFromDoc(ctx, doc)
		if err != nil {
			return types.WindowAggregate{}, err
		}
		acc.AddReading(r)
	}
	return acc.Aggregate(), nil
}
