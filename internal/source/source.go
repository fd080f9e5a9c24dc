package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/cysense/sensor-dashboard/internal/alert"
	"github.com/cysense/sensor-dashboard/internal/config"
	"github.com/cysense/sensor-dashboard/internal/model"
)

// ConnectivityError marks a live query failure the scheduler recovers from
// by keeping the previous snapshot.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "sensor source unreachable: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Source produces the latest readings snapshot and the historical trend
// series behind the export endpoints. Exactly two implementations exist:
// the Supabase-backed live source and the synthetic demo source.
type Source interface {
	Mode() model.Mode
	FetchLatest(ctx context.Context) (model.Snapshot, error)
	FetchHistory(ctx context.Context, since, until time.Time) ([]model.HistoryPoint, error)
}

// Select picks the live or demo source. Called once at startup; the mode is
// never re-evaluated afterwards.
func Select(cfg config.Config, policy alert.Policy, logger *slog.Logger) Source {
	if cfg.LiveMode() {
		logger.Info("supabase credentials found; using live sensor source", "url", cfg.SupabaseURL)
		return NewSupabase(cfg, policy)
	}
	logger.Info("supabase credentials not set; using demo data")
	return NewDemo(cfg.ActiveWindow, policy)
}

func buildStats(readings []model.DeviceReading, now time.Time, window time.Duration, policy alert.Policy, readingsToday int) model.Stats {
	stats := model.Stats{ReadingsToday: readingsToday}
	for _, dr := range readings {
		if dr.Device.Active(now, window) {
			stats.ActiveDevices++
		}
		if policy != nil {
			stats.Alerts += policy.Evaluate(dr)
		}
	}
	return stats
}
