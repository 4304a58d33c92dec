// Package storagemock provides a testify mock of the storage.Database
// interface for handler tests.
package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vitorcape/homeclima/pkg/storage"
	"github.com/vitorcape/homeclima/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) InsertReading(ctx context.Context, r types.Reading) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockDatabase) LatestReading(ctx context.Context, deviceID string) (*types.Reading, error) {
	args := m.Called(ctx, deviceID)
	if r, ok := args.Get(0).(*types.Reading); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatabase) ReadingsSince(ctx context.Context, deviceID string, since time.Time, limit int) ([]types.Reading, error) {
	args := m.Called(ctx, deviceID, since, limit)
	if r, ok := args.Get(0).([]types.Reading); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatabase) AggregateWindow(ctx context.Context, start, end time.Time) (types.WindowAggregate, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(types.WindowAggregate), args.Error(1)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
