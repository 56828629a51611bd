// Package chart builds the pressure line chart and owns the single live chart
// widget on a drawing surface.
package chart

import "github.com/2co2co0417/P-Alert/internal/modules/pressure/payload"

const (
	seriesLabel    = "気圧 (hPa)"
	lineColor      = "#2b6cb0"
	bandColor      = "rgba(229, 62, 62, 0.15)"
	bandBorder     = "rgba(229, 62, 62, 0.6)"
	nowColor       = "#4a5568"
	maxTicks       = 6
	NowLabel       = "current"
	dangerKey      = "danger"
	nowKey         = "now"
	yAxisTitleText = "hPa"
)

// Config is a Chart.js compatible line chart description. It is handed to the
// browser as-is.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label       string     `json:"label"`
	Data        []*float64 `json:"data"`
	BorderColor string     `json:"borderColor"`
	BorderWidth int        `json:"borderWidth"`
	Tension     float64    `json:"tension"`
	PointRadius int        `json:"pointRadius"`
	Fill        bool       `json:"fill"`
	SpanGaps    bool       `json:"spanGaps"`
}

type Options struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Animation           bool    `json:"animation"`
	Plugins             Plugins `json:"plugins"`
	Scales              Scales  `json:"scales"`
}

type Plugins struct {
	Legend     Legend            `json:"legend"`
	Annotation *AnnotationPlugin `json:"annotation,omitempty"`
}

type Legend struct {
	Display bool `json:"display"`
}

type AnnotationPlugin struct {
	Annotations map[string]Annotation `json:"annotations"`
}

// Annotation is either a "box" spanning [XMin, XMax] or a vertical "line"
// where XMin == XMax.
type Annotation struct {
	Type            string           `json:"type"`
	XMin            int              `json:"xMin"`
	XMax            int              `json:"xMax"`
	BackgroundColor string           `json:"backgroundColor,omitempty"`
	BorderColor     string           `json:"borderColor,omitempty"`
	BorderWidth     int              `json:"borderWidth"`
	BorderDash      []int            `json:"borderDash,omitempty"`
	Label           *AnnotationLabel `json:"label,omitempty"`
}

type AnnotationLabel struct {
	Display  bool   `json:"display"`
	Content  string `json:"content"`
	Position string `json:"position,omitempty"`
}

type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

type Axis struct {
	Title *AxisTitle `json:"title,omitempty"`
	Ticks *Ticks     `json:"ticks,omitempty"`
}

type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Ticks struct {
	MaxTicksLimit int `json:"maxTicksLimit"`
}

// BuildConfig describes the line over series, broken at gaps. The danger
// band is drawn only when both window indexes are known; the now marker only
// when nowIndex is set.
func BuildConfig(series payload.Series, window *payload.DangerWindow, nowIndex *int) Config {
	labels := append([]string(nil), series.Labels...)
	values := make([]*float64, len(series.Values))
	for i, v := range series.Values {
		if v != nil {
			f := *v
			values[i] = &f
		}
	}

	cfg := Config{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:       seriesLabel,
				Data:        values,
				BorderColor: lineColor,
				BorderWidth: 2,
				Tension:     0.3,
				PointRadius: 0,
			}},
		},
		Options: Options{
			Responsive: true,
			Plugins:    Plugins{Legend: Legend{Display: true}},
			Scales: Scales{
				X: Axis{Ticks: &Ticks{MaxTicksLimit: maxTicks}},
				Y: Axis{Title: &AxisTitle{Display: true, Text: yAxisTitleText}},
			},
		},
	}

	annotations := map[string]Annotation{}
	if window.HasIndexes() {
		annotations[dangerKey] = Annotation{
			Type:            "box",
			XMin:            *window.StartIndex,
			XMax:            *window.EndIndex,
			BackgroundColor: bandColor,
			BorderColor:     bandBorder,
			BorderWidth:     1,
		}
	}
	if nowIndex != nil {
		annotations[nowKey] = Annotation{
			Type:        "line",
			XMin:        *nowIndex,
			XMax:        *nowIndex,
			BorderColor: nowColor,
			BorderWidth: 2,
			BorderDash:  []int{6, 4},
			Label:       &AnnotationLabel{Display: true, Content: NowLabel, Position: "start"},
		}
	}
	if len(annotations) > 0 {
		cfg.Options.Plugins.Annotation = &AnnotationPlugin{Annotations: annotations}
	}
	return cfg
}

// DangerBand returns the shaded band annotation, if any.
func (c Config) DangerBand() (Annotation, bool) {
	return c.annotation(dangerKey)
}

// NowMarker returns the vertical "current" line annotation, if any.
func (c Config) NowMarker() (Annotation, bool) {
	return c.annotation(nowKey)
}

func (c Config) annotation(key string) (Annotation, bool) {
	if c.Options.Plugins.Annotation == nil {
		return Annotation{}, false
	}
	a, ok := c.Options.Plugins.Annotation.Annotations[key]
	return a, ok
}
