package model

import "time"

// Kind identifies a sensor measurement channel. Numeric kinds carry a float
// value, boolean kinds carry an event flag.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindHumidity    Kind = "humidity"
	KindPressure    Kind = "pressure"
	KindBattery     Kind = "battery"
	KindVoltage     Kind = "voltage"
	KindLinkQuality Kind = "linkquality"
	KindIlluminance Kind = "illuminance"
	KindBrightness  Kind = "brightness"

	KindMotion    Kind = "motion"
	KindContact   Kind = "contact"
	KindWaterLeak Kind = "water_leak"
	KindOccupancy Kind = "occupancy"
	KindSmoke     Kind = "smoke"
	KindGas       Kind = "gas"
	KindVibration Kind = "vibration"
)

// NumericKinds returns numeric kinds in display order.
func NumericKinds() []Kind {
	return []Kind{
		KindTemperature, KindHumidity, KindPressure, KindBattery,
		KindVoltage, KindLinkQuality, KindIlluminance, KindBrightness,
	}
}

// BooleanKinds returns boolean kinds in display order.
func BooleanKinds() []Kind {
	return []Kind{
		KindMotion, KindContact, KindWaterLeak, KindOccupancy,
		KindSmoke, KindGas, KindVibration,
	}
}

func (k Kind) Numeric() bool {
	switch k {
	case KindTemperature, KindHumidity, KindPressure, KindBattery,
		KindVoltage, KindLinkQuality, KindIlluminance, KindBrightness:
		return true
	}
	return false
}

func (k Kind) Unit() string {
	switch k {
	case KindTemperature:
		return "°C"
	case KindHumidity, KindBattery, KindBrightness:
		return "%"
	case KindPressure:
		return "hPa"
	case KindVoltage:
		return "V"
	case KindLinkQuality:
		return "lqi"
	case KindIlluminance:
		return "lx"
	}
	return ""
}

func (k Kind) Label() string {
	switch k {
	case KindTemperature:
		return "Temperature"
	case KindHumidity:
		return "Humidity"
	case KindPressure:
		return "Pressure"
	case KindBattery:
		return "Battery"
	case KindVoltage:
		return "Voltage"
	case KindLinkQuality:
		return "Link Quality"
	case KindIlluminance:
		return "Illuminance"
	case KindBrightness:
		return "Brightness"
	case KindMotion:
		return "Motion"
	case KindContact:
		return "Contact"
	case KindWaterLeak:
		return "Water Leak"
	case KindOccupancy:
		return "Occupancy"
	case KindSmoke:
		return "Smoke"
	case KindGas:
		return "Gas"
	case KindVibration:
		return "Vibration"
	}
	return string(k)
}

// Mode describes where snapshots come from. Selected once at startup.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// Device identifies a sensor node. Devices are never deleted; stale ones
// simply age out of active status by timestamp comparison.
type Device struct {
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Label      string    `json:"label,omitempty"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Active reports whether the device reported within the recency window.
// Derived, never stored.
func (d Device) Active(now time.Time, window time.Duration) bool {
	if d.LastSeenAt.IsZero() {
		return false
	}
	return now.Sub(d.LastSeenAt) <= window
}

// Reading is one capture of sensor values for a device. Immutable; newer
// readings supersede older ones, they never mutate them.
type Reading struct {
	Values     map[Kind]float64 `json:"values,omitempty"`
	Flags      map[Kind]bool    `json:"flags,omitempty"`
	CapturedAt time.Time        `json:"captured_at"`
}

// DeviceReading pairs a device with its most recent reading.
type DeviceReading struct {
	Device  Device  `json:"device"`
	Reading Reading `json:"reading"`
}

// Stats are the aggregate counters shown in the dashboard header.
type Stats struct {
	ActiveDevices int `json:"active_devices"`
	ReadingsToday int `json:"readings_today"`
	Alerts        int `json:"alerts"`
}

// Snapshot is the latest reading per device plus derived stats. Rebuilt
// wholesale on every refresh. Readings holds at most one entry per device
// address.
type Snapshot struct {
	Mode     Mode            `json:"mode"`
	TakenAt  time.Time       `json:"taken_at"`
	Readings []DeviceReading `json:"readings"`
	Stats    Stats           `json:"stats"`
}

// HistoryPoint is one historical temperature/humidity sample served by the
// trends and export endpoints. Either value may be absent for a device
// that only reports the other channel.
type HistoryPoint struct {
	Device      string    `json:"device"`
	CapturedAt  time.Time `json:"captured_at"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
}
