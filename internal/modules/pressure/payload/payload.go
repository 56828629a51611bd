// Package payload turns the loosely-shaped pressure API response into the
// canonical model every other dashboard stage consumes. Field drift between
// backend revisions is absorbed here and nowhere else.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the resolved series has fewer than
// MinPoints labels or values. Callers must not render anything for it.
var ErrInsufficientData = errors.New("insufficient pressure data")

// MinPoints is the shortest series worth drawing.
const MinPoints = 2

// Raw is a decoded response body. Numbers are kept as json.Number so that
// permissive parsing can tell 0 apart from a missing field.
type Raw map[string]any

// Series is the index-aligned label/value sequence drawn on the chart.
// A nil value is a gap: it encodes as null and the line breaks there.
type Series struct {
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

// Len is the number of points; labels and values are always the same length.
func (s Series) Len() int { return len(s.Values) }

// Gaps counts the values that are not numbers.
func (s Series) Gaps() int {
	n := 0
	for _, v := range s.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Points builds a gap-free value list.
func Points(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}

// Current is the most recent reading. Hpa is nil when the backend did not
// send a usable number.
type Current struct {
	Hpa        *float64 `json:"hpa"`
	ObservedAt string   `json:"observedAt"`
}

// DangerWindow is the backend-flagged pressure-drop interval.
// DeltaHpa is signed; negative means falling pressure.
type DangerWindow struct {
	StartLabel string   `json:"startLabel"`
	EndLabel   string   `json:"endLabel"`
	DeltaHpa   *float64 `json:"deltaHpa"`
	StartIndex *int     `json:"startIndex"`
	EndIndex   *int     `json:"endIndex"`
}

// HasLabels reports whether both boundary labels are present.
func (w *DangerWindow) HasLabels() bool {
	return w != nil && w.StartLabel != "" && w.EndLabel != ""
}

// HasIndexes reports whether both boundary indexes are known.
func (w *DangerWindow) HasIndexes() bool {
	return w != nil && w.StartIndex != nil && w.EndIndex != nil
}

// Model is the display-ready view of one fetch.
type Model struct {
	Series    Series        `json:"series"`
	Current   Current       `json:"current"`
	Delta3h   *float64      `json:"delta3h"`
	Window    *DangerWindow `json:"dangerWindow"`
	NowIndex  *int          `json:"nowIndex"`
	RiskLabel string        `json:"riskLabel"`
	NightMode bool          `json:"nightMode"`
}

// Decode parses a response body. Anything but a JSON object is malformed.
func Decode(body []byte) (Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode pressure payload: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode pressure payload: not a JSON object")
	}
	return raw, nil
}

// Normalize coerces raw into a Model. Missing or wrong-typed fields become
// safe defaults; only a too-short series is reported, as ErrInsufficientData.
// Entries of values that are not numbers stay in place as gaps.
func Normalize(raw Raw) (Model, error) {
	labels := resolveLabels(raw)
	values, _ := numberList(raw["values"])
	if len(labels) < MinPoints || len(values) < MinPoints {
		return Model{}, fmt.Errorf("%w: %d labels, %d values", ErrInsufficientData, len(labels), len(values))
	}
	if len(labels) != len(values) {
		n := min(len(labels), len(values))
		labels, values = labels[:n], values[:n]
	}

	m := Model{
		Series: Series{Labels: labels, Values: values},
		Current: Current{
			Hpa:        number(raw["current_hpa"]),
			ObservedAt: TruncateDate(stringField(raw["current_time"])),
		},
		Delta3h:   number(raw["delta_3h"]),
		RiskLabel: labelField(raw["risk"]),
		NightMode: nightMode(raw),
		NowIndex:  index(raw["i_now"], len(values)),
	}
	m.Window = dangerWindow(raw["danger_window"], len(values))
	return m, nil
}

// resolveLabels prefers display_labels over labels when it is array-valued.
func resolveLabels(raw Raw) []string {
	if v, ok := raw["display_labels"].([]any); ok {
		return stringList(v)
	}
	if v, ok := raw["labels"].([]any); ok {
		return stringList(v)
	}
	return nil
}

func dangerWindow(v any, n int) *DangerWindow {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	w := &DangerWindow{
		StartLabel: stringField(obj["start"]),
		EndLabel:   stringField(obj["end"]),
		DeltaHpa:   number(obj["delta_hpa"]),
		StartIndex: index(obj["start_i"], n),
		EndIndex:   index(obj["end_i"], n),
	}
	if w.HasIndexes() && *w.StartIndex > *w.EndIndex {
		w.StartIndex, w.EndIndex = w.EndIndex, w.StartIndex
	}
	if w.StartLabel == "" && w.EndLabel == "" && w.DeltaHpa == nil && !w.HasIndexes() {
		return nil
	}
	return w
}

// nightMode reads is_night_mode, falling back to the camelCase key older
// backends sent. Anything that is not a boolean counts as false.
func nightMode(raw Raw) bool {
	for _, key := range []string{"is_night_mode", "isNightMode"} {
		if v, present := raw[key]; present {
			b, _ := v.(bool)
			return b
		}
	}
	return false
}
