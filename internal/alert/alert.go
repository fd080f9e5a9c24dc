package alert

import "github.com/cysense/sensor-dashboard/internal/model"

// Policy decides how many alerts a single device reading contributes to the
// snapshot stats. The computation is deliberately pluggable; sources only
// ever see this interface.
type Policy interface {
	Evaluate(model.DeviceReading) int
}

// ThresholdPolicy counts hazard flags and low battery.
type ThresholdPolicy struct {
	LowBatteryPercent float64
}

func DefaultPolicy() ThresholdPolicy {
	return ThresholdPolicy{LowBatteryPercent: 15}
}

var hazardKinds = []model.Kind{model.KindSmoke, model.KindGas, model.KindWaterLeak}

func (p ThresholdPolicy) Evaluate(dr model.DeviceReading) int {
	count := 0
	for _, kind := range hazardKinds {
		if dr.Reading.Flags[kind] {
			count++
		}
	}
	if battery, ok := dr.Reading.Values[model.KindBattery]; ok && battery < p.LowBatteryPercent {
		count++
	}
	return count
}
