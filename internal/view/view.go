package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/cysense/sensor-dashboard/internal/model"
	"github.com/cysense/sensor-dashboard/internal/state"
)

// Card is one sensor value tile.
type Card struct {
	Device  string
	Kind    string
	Label   string
	Value   string
	Unit    string
	Updated string
	Stale   bool
}

// CardGroup collects cards of one sensor family.
type CardGroup struct {
	Title string
	Cards []Card
}

// Badge reflects connectivity mode and the last fetch error, if any.
type Badge struct {
	Mode  string
	OK    bool
	Error string
}

// Page is everything the dashboard template needs. Built purely from a
// state view; no retained UI state.
type Page struct {
	Title   string
	Badge   Badge
	Stats   model.Stats
	Numeric CardGroup
	Boolean CardGroup
	HasData bool
	TakenAt string
}

// BuildPage maps the current state view into display elements. mode is the
// startup-selected source mode, used before the first snapshot lands.
func BuildPage(v state.View, mode model.Mode, window time.Duration, now time.Time) Page {
	if v.HasData {
		mode = v.Snapshot.Mode
	}
	page := Page{
		Title:   "Sensor Dashboard",
		Badge:   buildBadge(mode, v.LastErr),
		HasData: v.HasData,
	}
	if !v.HasData {
		return page
	}

	page.Stats = v.Snapshot.Stats
	page.TakenAt = v.Snapshot.TakenAt.Format("15:04:05")
	page.Numeric = CardGroup{Title: "Sensors"}
	page.Boolean = CardGroup{Title: "Events & Status"}

	for _, dr := range v.Snapshot.Readings {
		updated := RelativeTime(now, dr.Reading.CapturedAt)
		stale := !dr.Device.Active(now, window)
		for _, kind := range model.NumericKinds() {
			value, ok := dr.Reading.Values[kind]
			if !ok {
				continue
			}
			page.Numeric.Cards = append(page.Numeric.Cards, Card{
				Device:  deviceTitle(dr.Device),
				Kind:    string(kind),
				Label:   kind.Label(),
				Value:   formatValue(kind, value),
				Unit:    kind.Unit(),
				Updated: updated,
				Stale:   stale,
			})
		}
		for _, kind := range model.BooleanKinds() {
			flag, ok := dr.Reading.Flags[kind]
			if !ok {
				continue
			}
			page.Boolean.Cards = append(page.Boolean.Cards, Card{
				Device:  deviceTitle(dr.Device),
				Kind:    string(kind),
				Label:   kind.Label(),
				Value:   formatFlag(flag),
				Updated: updated,
				Stale:   stale,
			})
		}
	}

	sortCards(page.Numeric.Cards)
	sortCards(page.Boolean.Cards)
	return page
}

func buildBadge(mode model.Mode, lastErr error) Badge {
	badge := Badge{OK: lastErr == nil}
	if mode == model.ModeLive {
		badge.Mode = "Connected"
	} else {
		badge.Mode = "Demo Mode"
	}
	if lastErr != nil {
		badge.Error = lastErr.Error()
	}
	return badge
}

func deviceTitle(d model.Device) string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

func formatValue(kind model.Kind, value float64) string {
	switch kind {
	case model.KindVoltage:
		return fmt.Sprintf("%.2f", value)
	case model.KindBattery, model.KindLinkQuality, model.KindIlluminance, model.KindBrightness:
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprintf("%.1f", value)
	}
}

func formatFlag(flag bool) string {
	if flag {
		return "Triggered"
	}
	return "Clear"
}

func sortCards(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Kind != cards[j].Kind {
			return cards[i].Kind < cards[j].Kind
		}
		return cards[i].Device < cards[j].Device
	})
}

// RelativeTime renders a timestamp as a coarse "ago" label.
func RelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hr ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}
}
