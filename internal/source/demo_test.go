package source

import (
	"context"
	"testing"
	"time"

	"github.com/cysense/sensor-dashboard/internal/alert"
	"github.com/cysense/sensor-dashboard/internal/model"
)

func TestDemoStableIdentities(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())

	first := demo.Generate()
	second := demo.Generate()
	if len(first.Readings) != len(demoRoster) {
		t.Fatalf("expected %d readings, got %d", len(demoRoster), len(first.Readings))
	}
	for i := range first.Readings {
		a, b := first.Readings[i].Device, second.Readings[i].Device
		if a.Name != b.Name || a.Address != b.Address {
			t.Fatalf("device identity changed between calls: %v vs %v", a, b)
		}
	}
}

func TestDemoValuesChangeBetweenCalls(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())

	// Sampled enough times, consecutive snapshots must differ in at least
	// one numeric value; identical runs would mean cached values.
	for attempt := 0; attempt < 5; attempt++ {
		first := demo.Generate()
		second := demo.Generate()
		for i := range first.Readings {
			for kind, value := range first.Readings[i].Reading.Values {
				if second.Readings[i].Reading.Values[kind] != value {
					return
				}
			}
		}
	}
	t.Fatalf("consecutive demo snapshots never differed; values appear cached")
}

func TestDemoValueBounds(t *testing.T) {
	bounds := map[model.Kind][2]float64{
		model.KindTemperature: {15, 30},
		model.KindHumidity:    {30, 70},
		model.KindPressure:    {980, 1040},
		model.KindBattery:     {20, 100},
		model.KindVoltage:     {2.7, 3.2},
		model.KindLinkQuality: {20, 255},
		model.KindIlluminance: {0, 2000},
		model.KindBrightness:  {0, 100},
	}
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())
	for i := 0; i < 20; i++ {
		snapshot := demo.Generate()
		for _, dr := range snapshot.Readings {
			for kind, value := range dr.Reading.Values {
				limits, ok := bounds[kind]
				if !ok {
					t.Fatalf("unexpected numeric kind %q", kind)
				}
				if value < limits[0] || value > limits[1] {
					t.Fatalf("%s value %v outside [%v, %v]", kind, value, limits[0], limits[1])
				}
			}
		}
	}
}

func TestDemoSnapshotStats(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())
	demo.now = func() time.Time {
		return time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	}
	snapshot, err := demo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if snapshot.Mode != model.ModeDemo {
		t.Fatalf("mode = %q, want demo", snapshot.Mode)
	}
	// Demo timestamps are always within minutes, so the whole roster is
	// active inside the 4h window.
	if snapshot.Stats.ActiveDevices != len(demoRoster) {
		t.Fatalf("ActiveDevices = %d, want %d", snapshot.Stats.ActiveDevices, len(demoRoster))
	}
	if snapshot.Stats.ReadingsToday <= 0 {
		t.Fatalf("ReadingsToday = %d, want > 0", snapshot.Stats.ReadingsToday)
	}
}

func TestDemoReadingsTodayIsStableWithinAMinute(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())
	at := time.Date(2026, 8, 23, 14, 0, 30, 0, time.UTC)
	demo.now = func() time.Time { return at }

	first := demo.Generate().Stats.ReadingsToday
	second := demo.Generate().Stats.ReadingsToday
	if first != second {
		t.Fatalf("ReadingsToday changed between refreshes at the same clock: %d vs %d", first, second)
	}
}

func TestDemoReadingsTodayGrowsThroughTheDay(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())

	counts := make([]int, 0, 3)
	for _, hour := range []int{1, 12, 23} {
		at := time.Date(2026, 8, 23, hour, 0, 0, 0, time.UTC)
		demo.now = func() time.Time { return at }
		counts = append(counts, demo.Generate().Stats.ReadingsToday)
	}
	if !(counts[0] < counts[1] && counts[1] < counts[2]) {
		t.Fatalf("ReadingsToday should grow monotonically through the day, got %v", counts)
	}

	// Resets at the day boundary.
	demo.now = func() time.Time {
		return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	}
	if got := demo.Generate().Stats.ReadingsToday; got != 0 {
		t.Fatalf("ReadingsToday at midnight = %d, want 0", got)
	}
}

func TestDemoHistoryCoversRange(t *testing.T) {
	demo := NewDemo(4*time.Hour, alert.DefaultPolicy())
	until := time.Date(2026, 8, 23, 18, 0, 0, 0, time.UTC)
	since := until.Add(-12 * time.Hour)

	points, err := demo.FetchHistory(context.Background(), since, until)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(points) == 0 {
		t.Fatalf("expected synthesized history points")
	}
	devices := map[string]bool{}
	for _, p := range points {
		if p.CapturedAt.Before(since) || p.CapturedAt.After(until) {
			t.Fatalf("point at %v outside [%v, %v]", p.CapturedAt, since, until)
		}
		if p.Temperature == nil || p.Humidity == nil {
			t.Fatalf("demo history must carry both channels, got %+v", p)
		}
		devices[p.Device] = true
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 trend devices, got %d", len(devices))
	}

	empty, err := demo.FetchHistory(context.Background(), until, until)
	if err != nil {
		t.Fatalf("FetchHistory empty range: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty range should produce no points, got %d", len(empty))
	}
}
