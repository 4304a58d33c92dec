// Package meteo implements the Open-Meteo client used for both sun events
// and the hourly temperature forecast.
package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/common"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/metrics"
	"github.com/vitorcape/homeclima/pkg/types"
)

// SunProvider supplies sunrise/sunset events for a calendar date.
type SunProvider interface {
	EventsFor(ctx context.Context, date string) (types.SunEvents, error)
}

// ForecastProvider supplies the hourly temperature forecast for a calendar
// date, at most one point per hour in local time.
type ForecastProvider interface {
	ForecastFor(ctx context.Context, date string) ([]types.ForecastPoint, error)
}

// OpenMeteo fetches daily sun events and hourly temperatures from the
// Open-Meteo forecast API. Responses are requested in the site's timezone so
// all timestamps arrive as local-naive strings.
type OpenMeteo struct {
	apiURL    string
	latitude  float64
	longitude float64
	timezone  string
	client    *http.Client

	mu            sync.Mutex
	sunCache      map[string]types.SunEvents
	forecastCache map[string][]types.ForecastPoint
	lastFetchTime map[string]time.Time
}

// Configured sets up the Open-Meteo client.
// It registers flags for configuration.
func Configured() *OpenMeteo {
	m := &OpenMeteo{
		client:        common.HTTPClient(10 * time.Second),
		sunCache:      make(map[string]types.SunEvents),
		forecastCache: make(map[string][]types.ForecastPoint),
		lastFetchTime: make(map[string]time.Time),
	}

	apiURL := lflag.String("meteo-api-url", "https://api.open-meteo.com/v1/forecast", "URL for the Open-Meteo forecast API")
	latitude := lflag.String("meteo-latitude", "-21.1383", "Site latitude for sun/forecast lookups")
	longitude := lflag.String("meteo-longitude", "-48.9728", "Site longitude for sun/forecast lookups")
	timezone := lflag.String("meteo-timezone", "America/Sao_Paulo", "IANA timezone Open-Meteo localizes timestamps to")

	lflag.Do(func() {
		m.apiURL = *apiURL
		m.timezone = *timezone

		var err error
		m.latitude, err = parseCoordinate("meteo-latitude", *latitude)
		if err != nil {
			panic(err.Error())
		}
		m.longitude, err = parseCoordinate("meteo-longitude", *longitude)
		if err != nil {
			panic(err.Error())
		}

		if err := m.Validate(); err != nil {
			panic(fmt.Sprintf("meteo validation failed: %v", err))
		}
	})

	return m
}

// parseCoordinate parses a latitude/longitude flag value. Flags carry the
// coordinates as strings, so the conversion happens once at startup.
func parseCoordinate(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return f, nil
}

// Validate ensures the configuration is valid.
func (m *OpenMeteo) Validate() error {
	if m.apiURL == "" {
		return fmt.Errorf("meteo-api-url is required")
	}
	if _, err := url.Parse(m.apiURL); err != nil {
		return fmt.Errorf("failed to parse meteo url (%s): %w", m.apiURL, err)
	}
	if m.latitude < -90 || m.latitude > 90 {
		return fmt.Errorf("meteo-latitude out of range: %f", m.latitude)
	}
	if m.longitude < -180 || m.longitude > 180 {
		return fmt.Errorf("meteo-longitude out of range: %f", m.longitude)
	}
	if m.timezone == "" {
		return fmt.Errorf("meteo-timezone is required")
	}
	return nil
}

type dailyResponse struct {
	Daily struct {
		Time    []string `json:"time"`
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

type hourlyResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2M []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

func (m *OpenMeteo) newRequest(ctx context.Context, date string, params url.Values) (*http.Request, error) {
	u, err := url.Parse(m.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	params.Set("latitude", strconv.FormatFloat(m.latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(m.longitude, 'f', -1, 64))
	params.Set("timezone", m.timezone)
	params.Set("start_date", date)
	params.Set("end_date", date)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching from open-meteo", slog.String("url", u.String()))
	return req, nil
}

// EventsFor returns the sunrise/sunset events for the given YYYY-MM-DD date.
// Events for a date never change, so successful lookups are cached for the
// life of the process.
func (m *OpenMeteo) EventsFor(ctx context.Context, date string) (types.SunEvents, error) {
	m.mu.Lock()
	if ev, ok := m.sunCache[date]; ok {
		m.mu.Unlock()
		return ev, nil
	}
	m.mu.Unlock()

	params := url.Values{}
	params.Set("daily", "sunrise,sunset")
	req, err := m.newRequest(ctx, date, params)
	if err != nil {
		return types.SunEvents{}, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("sun").Inc()
		return types.SunEvents{}, fmt.Errorf("failed to fetch sun events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderFailures.WithLabelValues("sun").Inc()
		return types.SunEvents{}, fmt.Errorf("open-meteo returned status: %d", resp.StatusCode)
	}

	var data dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.ProviderFailures.WithLabelValues("sun").Inc()
		return types.SunEvents{}, fmt.Errorf("failed to decode sun response: %w", err)
	}
	if len(data.Daily.Sunrise) == 0 || len(data.Daily.Sunset) == 0 {
		metrics.ProviderFailures.WithLabelValues("sun").Inc()
		return types.SunEvents{}, fmt.Errorf("open-meteo returned no sun events for %s", date)
	}

	ev := types.SunEvents{
		Sunrise: data.Daily.Sunrise[0],
		Sunset:  data.Daily.Sunset[0],
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"fetched sun events",
		slog.String("date", date),
		slog.String("sunrise", ev.Sunrise),
		slog.String("sunset", ev.Sunset),
	)

	m.mu.Lock()
	m.sunCache[date] = ev
	m.mu.Unlock()
	return ev, nil
}

// ForecastFor returns the hourly temperature forecast for the given
// YYYY-MM-DD date, at most 24 points with local-naive on-the-hour timestamps.
// The forecast is revised by the provider during the day, so the cache is
// only reused within the same 5 minute block.
func (m *OpenMeteo) ForecastFor(ctx context.Context, date string) ([]types.ForecastPoint, error) {
	now := time.Now()

	m.mu.Lock()
	if last, ok := m.lastFetchTime[date]; ok && !now.Truncate(5*time.Minute).After(last) {
		points := m.forecastCache[date]
		m.mu.Unlock()
		return points, nil
	}
	m.mu.Unlock()

	params := url.Values{}
	params.Set("hourly", "temperature_2m")
	req, err := m.newRequest(ctx, date, params)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("forecast").Inc()
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderFailures.WithLabelValues("forecast").Inc()
		return nil, fmt.Errorf("open-meteo returned status: %d", resp.StatusCode)
	}

	var data hourlyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.ProviderFailures.WithLabelValues("forecast").Inc()
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	points := make([]types.ForecastPoint, 0, len(data.Hourly.Time))
	for i, ts := range data.Hourly.Time {
		if len(ts) < 13 {
			log.Ctx(ctx).WarnContext(ctx, "skipping malformed forecast timestamp", slog.String("ts", ts))
			continue
		}
		p := types.ForecastPoint{
			LocalTime: ts,
			HourLabel: ts[11:13] + ":00",
		}
		if i < len(data.Hourly.Temperature2M) {
			p.Temperature = data.Hourly.Temperature2M[i]
		}
		points = append(points, p)
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"fetched forecast",
		slog.String("date", date),
		slog.Int("count", len(points)),
	)

	m.mu.Lock()
	m.forecastCache[date] = points
	m.lastFetchTime[date] = now
	m.mu.Unlock()
	return points, nil
}
