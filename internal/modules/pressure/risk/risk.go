// Package risk derives the badge and danger-window line from a normalized
// payload. It never classifies pressure itself; the backend's label is taken
// as given.
package risk

import (
	"encoding/json"
	"fmt"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/payload"
)

// Level is the overall day's pressure-change risk.
type Level int

const (
	Normal Level = iota
	Caution
	Alert
)

// Backend labels for the two elevated levels.
const (
	LabelAlert   = "警戒"
	LabelCaution = "注意"
)

const (
	// BadgePlaceholder is shown when the payload carries no risk label.
	BadgePlaceholder = "---"
	// DangerPrefix starts every danger-window line.
	DangerPrefix = "要注意"
	// DangerPlaceholder is shown when no complete window is known.
	DangerPlaceholder = DangerPrefix + ": --"
)

// ParseLevel maps a backend label by exact match; anything else is Normal.
func ParseLevel(label string) Level {
	switch label {
	case LabelAlert:
		return Alert
	case LabelCaution:
		return Caution
	default:
		return Normal
	}
}

func (l Level) String() string {
	switch l {
	case Alert:
		return "warning"
	case Caution:
		return "caution"
	default:
		return "calm"
	}
}

// Color is the badge background for the level.
func (l Level) Color() string {
	switch l {
	case Alert:
		return "#ffcdd2"
	case Caution:
		return "#ffe5b4"
	default:
		return "#c8e6c9"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "warning":
		*l = Alert
	case "caution":
		*l = Caution
	case "calm":
		*l = Normal
	default:
		return fmt.Errorf("unknown risk level %q", s)
	}
	return nil
}

// Presentation is everything the badge and danger line need.
type Presentation struct {
	BadgeText  string `json:"badgeText"`
	Level      Level  `json:"level"`
	DangerLine string `json:"dangerLine"`
}

// Present derives the presentation state from m.
func Present(m payload.Model) Presentation {
	badge := m.RiskLabel
	if badge == "" {
		badge = BadgePlaceholder
	}
	return Presentation{
		BadgeText:  badge,
		Level:      ParseLevel(m.RiskLabel),
		DangerLine: DangerLine(m.Window),
	}
}

// DangerLine formats "要注意: 10-01 09:00 – 10-01 13:00 (-5.2 hPa)". It is
// empty unless both boundary labels are present; the parenthetical is
// dropped when the delta is unknown.
func DangerLine(w *payload.DangerWindow) string {
	if !w.HasLabels() {
		return ""
	}
	line := fmt.Sprintf("%s: %s – %s", DangerPrefix, payload.TruncateDate(w.StartLabel), payload.TruncateDate(w.EndLabel))
	if w.DeltaHpa != nil {
		line += fmt.Sprintf(" (%s hPa)", FormatDelta(*w.DeltaHpa))
	}
	return line
}

// FormatDelta renders a signed one-decimal delta with an explicit "+" for
// non-negative values.
func FormatDelta(d float64) string {
	s := fmt.Sprintf("%+.1f", d)
	if s == "-0.0" {
		return "+0.0"
	}
	return s
}
