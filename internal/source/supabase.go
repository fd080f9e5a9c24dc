package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cysense/sensor-dashboard/internal/alert"
	"github.com/cysense/sensor-dashboard/internal/config"
	"github.com/cysense/sensor-dashboard/internal/model"
)

const (
	latestReadingsPath = "/rest/v1/latest_sensor_readings"
	readingsPath       = "/rest/v1/sensor_readings"
)

// Supabase reads the latest-readings-per-device view through the PostgREST
// interface. Read-only; no writes, no schema management.
type Supabase struct {
	client *resty.Client
	limit  int
	window time.Duration
	policy alert.Policy
	now    func() time.Time
}

func NewSupabase(cfg config.Config, policy alert.Policy) *Supabase {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.SupabaseURL, "/")).
		SetHeader("apikey", cfg.SupabaseKey).
		SetHeader("Authorization", "Bearer "+cfg.SupabaseKey)
	return &Supabase{
		client: client,
		limit:  cfg.FetchLimit,
		window: cfg.ActiveWindow,
		policy: policy,
		now:    time.Now,
	}
}

func (s *Supabase) Mode() model.Mode { return model.ModeLive }

// readingRow mirrors one row of the latest_sensor_readings view. All sensor
// columns are nullable; only the non-null ones become part of the reading.
type readingRow struct {
	DeviceName    string    `json:"device_name"`
	DeviceAddress string    `json:"device_address"`
	Timestamp     time.Time `json:"timestamp"`

	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
	Battery     *float64 `json:"battery"`
	Voltage     *float64 `json:"voltage"`
	LinkQuality *float64 `json:"linkquality"`
	Illuminance *float64 `json:"illuminance"`
	Brightness  *float64 `json:"brightness"`

	Motion    *bool `json:"motion"`
	Contact   *bool `json:"contact"`
	WaterLeak *bool `json:"water_leak"`
	Occupancy *bool `json:"occupancy"`
	Smoke     *bool `json:"smoke"`
	Gas       *bool `json:"gas"`
	Vibration *bool `json:"vibration"`
}

func (r readingRow) toDeviceReading() model.DeviceReading {
	reading := model.Reading{
		Values:     map[model.Kind]float64{},
		Flags:      map[model.Kind]bool{},
		CapturedAt: r.Timestamp.UTC(),
	}
	numeric := map[model.Kind]*float64{
		model.KindTemperature: r.Temperature,
		model.KindHumidity:    r.Humidity,
		model.KindPressure:    r.Pressure,
		model.KindBattery:     r.Battery,
		model.KindVoltage:     r.Voltage,
		model.KindLinkQuality: r.LinkQuality,
		model.KindIlluminance: r.Illuminance,
		model.KindBrightness:  r.Brightness,
	}
	for kind, value := range numeric {
		if value != nil {
			reading.Values[kind] = *value
		}
	}
	flags := map[model.Kind]*bool{
		model.KindMotion:    r.Motion,
		model.KindContact:   r.Contact,
		model.KindWaterLeak: r.WaterLeak,
		model.KindOccupancy: r.Occupancy,
		model.KindSmoke:     r.Smoke,
		model.KindGas:       r.Gas,
		model.KindVibration: r.Vibration,
	}
	for kind, value := range flags {
		if value != nil {
			reading.Flags[kind] = *value
		}
	}
	return model.DeviceReading{
		Device: model.Device{
			Name:       r.DeviceName,
			Address:    r.DeviceAddress,
			LastSeenAt: r.Timestamp.UTC(),
		},
		Reading: reading,
	}
}

// FetchLatest queries the latest-readings view and assembles a snapshot.
// Any transport or status failure comes back as *ConnectivityError.
func (s *Supabase) FetchLatest(ctx context.Context) (model.Snapshot, error) {
	var rows []readingRow
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("limit", strconv.Itoa(s.limit)).
		SetResult(&rows).
		Get(latestReadingsPath)
	if err != nil {
		return model.Snapshot{}, &ConnectivityError{Err: err}
	}
	if resp.IsError() {
		return model.Snapshot{}, &ConnectivityError{
			Err: fmt.Errorf("latest readings query returned status %d", resp.StatusCode()),
		}
	}

	now := s.now().UTC()
	readings := dedupeNewest(rows)
	snapshot := model.Snapshot{
		Mode:     model.ModeLive,
		TakenAt:  now,
		Readings: readings,
	}
	snapshot.Stats = buildStats(readings, now, s.window, s.policy, s.countToday(ctx, now))
	return snapshot, nil
}

// historyRow mirrors the trend columns of one sensor_readings row.
type historyRow struct {
	DeviceName  string    `json:"device_name"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
}

// FetchHistory queries the readings table for temperature and humidity
// samples within [since, until], ordered by capture time.
func (s *Supabase) FetchHistory(ctx context.Context, since, until time.Time) ([]model.HistoryPoint, error) {
	var rows []historyRow
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(url.Values{
			"select":    {"device_name,timestamp,temperature,humidity"},
			"timestamp": {"gte." + since.UTC().Format(time.RFC3339), "lte." + until.UTC().Format(time.RFC3339)},
			"order":     {"timestamp"},
		}).
		SetResult(&rows).
		Get(readingsPath)
	if err != nil {
		return nil, &ConnectivityError{Err: err}
	}
	if resp.IsError() {
		return nil, &ConnectivityError{
			Err: fmt.Errorf("history query returned status %d", resp.StatusCode()),
		}
	}

	points := make([]model.HistoryPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, model.HistoryPoint{
			Device:      row.DeviceName,
			CapturedAt:  row.Timestamp.UTC(),
			Temperature: row.Temperature,
			Humidity:    row.Humidity,
		})
	}
	return points, nil
}

// dedupeNewest keeps the newest row per device so the snapshot carries at
// most one reading per device even when the view returns duplicates.
func dedupeNewest(rows []readingRow) []model.DeviceReading {
	latest := make(map[string]model.DeviceReading, len(rows))
	for _, row := range rows {
		dr := row.toDeviceReading()
		key := dr.Device.Address
		if key == "" {
			key = dr.Device.Name
		}
		if prev, ok := latest[key]; ok && !dr.Reading.CapturedAt.After(prev.Reading.CapturedAt) {
			continue
		}
		latest[key] = dr
	}
	readings := make([]model.DeviceReading, 0, len(latest))
	for _, dr := range latest {
		readings = append(readings, dr)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Device.Name < readings[j].Device.Name
	})
	return readings
}

// countToday asks PostgREST for an exact count of readings captured since
// local midnight. A failed count degrades to zero instead of failing the
// whole fetch.
func (s *Supabase) countToday(ctx context.Context, now time.Time) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "count=exact").
		SetHeader("Range", "0-0").
		SetQueryParam("select", "id").
		SetQueryParam("timestamp", "gte."+midnight.Format(time.RFC3339)).
		Get(readingsPath)
	if err != nil || resp.IsError() {
		return 0
	}
	return parseExactCount(resp.Header().Get("Content-Range"))
}

// parseExactCount extracts the total from a Content-Range header such as
// "0-0/2847" or "*/0".
func parseExactCount(contentRange string) int {
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0
	}
	total, err := strconv.Atoi(contentRange[idx+1:])
	if err != nil || total < 0 {
		return 0
	}
	return total
}
