package alert

import (
	"testing"

	"github.com/cysense/sensor-dashboard/internal/model"
)

func TestThresholdPolicyCountsHazardFlags(t *testing.T) {
	policy := DefaultPolicy()
	dr := model.DeviceReading{
		Reading: model.Reading{
			Flags: map[model.Kind]bool{
				model.KindSmoke:     true,
				model.KindGas:       false,
				model.KindWaterLeak: true,
				model.KindMotion:    true,
			},
		},
	}
	if got := policy.Evaluate(dr); got != 2 {
		t.Fatalf("Evaluate = %d, want 2", got)
	}
}

func TestThresholdPolicyLowBattery(t *testing.T) {
	policy := DefaultPolicy()

	low := model.DeviceReading{
		Reading: model.Reading{Values: map[model.Kind]float64{model.KindBattery: 10}},
	}
	if got := policy.Evaluate(low); got != 1 {
		t.Fatalf("Evaluate(low battery) = %d, want 1", got)
	}

	ok := model.DeviceReading{
		Reading: model.Reading{Values: map[model.Kind]float64{model.KindBattery: 80}},
	}
	if got := policy.Evaluate(ok); got != 0 {
		t.Fatalf("Evaluate(healthy battery) = %d, want 0", got)
	}
}

func TestThresholdPolicyQuietReading(t *testing.T) {
	policy := DefaultPolicy()
	dr := model.DeviceReading{
		Reading: model.Reading{
			Values: map[model.Kind]float64{model.KindTemperature: 21.5},
			Flags:  map[model.Kind]bool{model.KindMotion: true},
		},
	}
	if got := policy.Evaluate(dr); got != 0 {
		t.Fatalf("Evaluate = %d, want 0", got)
	}
}
