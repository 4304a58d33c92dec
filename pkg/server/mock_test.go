package server

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vitorcape/homeclima/pkg/storage/storagemock"
	"github.com/vitorcape/homeclima/pkg/types"
	"github.com/vitorcape/homeclima/pkg/window"
)

type mockSun struct {
	mock.Mock
}

func (m *mockSun) EventsFor(ctx context.Context, date string) (types.SunEvents, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(types.SunEvents), args.Error(1)
}

type mockForecast struct {
	mock.Mock
}

func (m *mockForecast) ForecastFor(ctx context.Context, date string) ([]types.ForecastPoint, error) {
	args := m.Called(ctx, date)
	if p, ok := args.Get(0).([]types.ForecastPoint); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func fixedNow() time.Time {
	// 15:00 UTC is 12:00 in Sao Paulo
	return time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
}

func newTestServer(db *storagemock.MockDatabase, sunP *mockSun, fcP *mockForecast) *Server {
	return &Server{
		storage:  db,
		sun:      sunP,
		forecast: fcP,
		apiKey:   "test-secret",
		now:      fixedNow,
		loc:      window.Location,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
