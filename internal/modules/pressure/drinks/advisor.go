package drinks

import (
	"encoding/json"
	"fmt"
	"math"
)

// Tier is the advisory strength for one drink.
type Tier int

const (
	Safe Tier = iota
	Moderate
	Avoid
)

const (
	avoidScore    = 6
	moderateScore = 4
)

func (t Tier) String() string {
	switch t {
	case Avoid:
		return "avoid"
	case Moderate:
		return "moderate"
	default:
		return "safe"
	}
}

// Label is the text shown next to a drink.
func (t Tier) Label() string {
	switch t {
	case Avoid:
		return "控えめに"
	case Moderate:
		return "ほどほどに"
	default:
		return "問題なし"
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "avoid":
		*t = Avoid
	case "moderate":
		*t = Moderate
	case "safe":
		*t = Safe
	default:
		return fmt.Errorf("unknown drink tier %q", s)
	}
	return nil
}

// Classify maps a score to its tier.
func Classify(score float64) Tier {
	switch {
	case score >= avoidScore:
		return Avoid
	case score >= moderateScore:
		return Moderate
	default:
		return Safe
	}
}

// Score is |delta| + base risk.
func Score(deltaHpa float64, baseRisk int) float64 {
	return math.Abs(deltaHpa) + float64(baseRisk)
}

// Assessment is one scored drink.
type Assessment struct {
	Profile Profile `json:"profile"`
	Score   float64 `json:"score"`
	Tier    Tier    `json:"tier"`
}

// Status says which variant an Advice is.
type Status int

const (
	// StatusUnavailable: night mode is off, advice is not shown yet today.
	StatusUnavailable Status = iota
	// StatusUnconfigured: night mode is on but the user picked no drinks.
	StatusUnconfigured
	// StatusAssessed: Assessments holds one entry per known preferred drink.
	StatusAssessed
)

func (s Status) String() string {
	switch s {
	case StatusUnconfigured:
		return "unconfigured"
	case StatusAssessed:
		return "assessed"
	default:
		return "unavailable"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "unavailable":
		*s = StatusUnavailable
	case "unconfigured":
		*s = StatusUnconfigured
	case "assessed":
		*s = StatusAssessed
	default:
		return fmt.Errorf("unknown advice status %q", v)
	}
	return nil
}

const (
	MessageUnavailable  = "お酒のアドバイスは夜間（15時以降）に表示されます。"
	MessageUnconfigured = "設定画面でよく飲むお酒を選んでください。"
)

// Advice is the advisor output: either a gated message or assessments.
type Advice struct {
	Status      Status       `json:"status"`
	Assessments []Assessment `json:"assessments,omitempty"`
}

// Message is the fixed text for the gated variants, empty when assessed.
func (a Advice) Message() string {
	switch a.Status {
	case StatusUnavailable:
		return MessageUnavailable
	case StatusUnconfigured:
		return MessageUnconfigured
	default:
		return ""
	}
}

// Advise scores preferred drink keys, in order, against deltaHpa. A nil
// delta counts as zero volatility. Unknown keys are skipped.
func Advise(preferred []string, deltaHpa *float64, nightMode bool) Advice {
	if !nightMode {
		return Advice{Status: StatusUnavailable}
	}
	if len(preferred) == 0 {
		return Advice{Status: StatusUnconfigured}
	}

	var delta float64
	if deltaHpa != nil {
		delta = *deltaHpa
	}

	out := make([]Assessment, 0, len(preferred))
	for _, raw := range preferred {
		k, ok := ParseKey(raw)
		if !ok {
			continue
		}
		p, _ := Lookup(k)
		score := Score(delta, p.BaseRisk)
		out = append(out, Assessment{Profile: p, Score: score, Tier: Classify(score)})
	}
	return Advice{Status: StatusAssessed, Assessments: out}
}
