package source

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cysense/sensor-dashboard/internal/alert"
	"github.com/cysense/sensor-dashboard/internal/model"
)

// eventProbability keeps boolean sensors mostly quiet so demo snapshots
// resemble rare real-world events.
const eventProbability = 0.05

type demoDevice struct {
	name    string
	address string
	kinds   []model.Kind
}

// demoRoster is the fixed set of device identities used in demo mode. The
// identities are stable across refreshes; only the values change.
var demoRoster = []demoDevice{
	{"Living Room", "0x00158d0001a4b2c1", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindPressure, model.KindBattery, model.KindLinkQuality}},
	{"Bedroom", "0x00158d0001a4b2c2", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindBattery, model.KindVoltage, model.KindLinkQuality}},
	{"Kitchen", "0x00158d0001a4b2c3", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindSmoke, model.KindGas, model.KindBattery}},
	{"Bathroom", "0x00158d0001a4b2c4", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindWaterLeak, model.KindBattery}},
	{"Hallway", "0x00158d0001a4b2c5", []model.Kind{model.KindMotion, model.KindOccupancy, model.KindIlluminance, model.KindBattery, model.KindLinkQuality}},
	{"Balcony", "0x00158d0001a4b2c6", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindPressure, model.KindBattery}},
	{"Garage", "0x00158d0001a4b2c7", []model.Kind{model.KindContact, model.KindVibration, model.KindTemperature, model.KindBattery, model.KindVoltage}},
	{"Office", "0x00158d0001a4b2c8", []model.Kind{model.KindTemperature, model.KindHumidity, model.KindBrightness, model.KindOccupancy, model.KindLinkQuality}},
}

// Demo generates synthetic snapshots when no database is configured. Pure
// computation, no network I/O, no caching between calls.
type Demo struct {
	window time.Duration
	policy alert.Policy
	now    func() time.Time
}

func NewDemo(window time.Duration, policy alert.Policy) *Demo {
	return &Demo{window: window, policy: policy, now: time.Now}
}

func (d *Demo) Mode() model.Mode { return model.ModeDemo }

func (d *Demo) FetchLatest(_ context.Context) (model.Snapshot, error) {
	return d.Generate(), nil
}

// Generate builds a fresh randomized snapshot. Every call produces a new
// value set so repeated demo refreshes visibly change.
func (d *Demo) Generate() model.Snapshot {
	now := d.now().UTC()
	readings := make([]model.DeviceReading, 0, len(demoRoster))
	for _, dev := range demoRoster {
		capturedAt := now.Add(-time.Duration(rand.IntN(240)) * time.Second)
		reading := model.Reading{
			Values:     map[model.Kind]float64{},
			Flags:      map[model.Kind]bool{},
			CapturedAt: capturedAt,
		}
		for _, kind := range dev.kinds {
			if kind.Numeric() {
				reading.Values[kind] = demoValue(kind)
			} else {
				reading.Flags[kind] = rand.Float64() < eventProbability
			}
		}
		readings = append(readings, model.DeviceReading{
			Device: model.Device{
				Name:       dev.name,
				Address:    dev.address,
				LastSeenAt: capturedAt,
			},
			Reading: reading,
		})
	}

	snapshot := model.Snapshot{
		Mode:     model.ModeDemo,
		TakenAt:  now,
		Readings: readings,
	}
	snapshot.Stats = buildStats(readings, now, d.window, d.policy, demoReadingsToday(now))
	return snapshot
}

// demoReadingsToday accumulates through the day the way a live deployment
// would: the roster reports roughly every four minutes, so the counter
// grows monotonically from midnight and resets at the day boundary.
func demoReadingsToday(now time.Time) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return len(demoRoster) * int(now.Sub(midnight)/(4*time.Minute))
}

// FetchHistory synthesizes hourly temperature and humidity samples for a
// pair of roster devices, shaped like the live history query result.
func (d *Demo) FetchHistory(_ context.Context, since, until time.Time) ([]model.HistoryPoint, error) {
	if !until.After(since) {
		return nil, nil
	}
	var points []model.HistoryPoint
	step := 0
	for ts := since.UTC(); !ts.After(until.UTC()); ts = ts.Add(time.Hour) {
		for i, dev := range demoRoster[:2] {
			temperature := 21 + float64(i) + math.Sin(float64(step)/4)*2
			humidity := 45 + float64(i*3) + math.Cos(float64(step)/6)*8
			points = append(points, model.HistoryPoint{
				Device:      dev.name,
				CapturedAt:  ts,
				Temperature: &temperature,
				Humidity:    &humidity,
			})
		}
		step++
	}
	return points, nil
}

// demoValue draws a value within realistic bounds for the kind.
func demoValue(kind model.Kind) float64 {
	switch kind {
	case model.KindTemperature:
		return round(15+rand.Float64()*15, 1)
	case model.KindHumidity:
		return round(30+rand.Float64()*40, 1)
	case model.KindPressure:
		return round(980+rand.Float64()*60, 1)
	case model.KindBattery:
		return float64(20 + rand.IntN(81))
	case model.KindVoltage:
		return round(2.7+rand.Float64()*0.5, 2)
	case model.KindLinkQuality:
		return float64(20 + rand.IntN(236))
	case model.KindIlluminance:
		return float64(rand.IntN(2001))
	case model.KindBrightness:
		return float64(rand.IntN(101))
	}
	return 0
}

func round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
