// Package page is the server-side model of the dashboard's presentation
// targets. The HTML views read from it; only the dashboard controller and
// the chart renderer write to it.
package page

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/chart"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/risk"
)

const (
	TargetCurrent     = "currentText"
	TargetCurrentTime = "currentTimeText"
	TargetDelta3h     = "delta3hText"
	TargetDanger      = "dangerText"
	TargetRiskBadge   = "riskBadge"
	TargetChart       = "pressureChart"
	TargetDrinks      = "drinkList"
)

// Placeholder is shown in text targets that have no value yet.
const Placeholder = "--"

// DefaultTargets is every target the dashboard template renders.
var DefaultTargets = []string{
	TargetCurrent, TargetCurrentTime, TargetDelta3h, TargetDanger,
	TargetRiskBadge, TargetChart, TargetDrinks,
}

type Badge struct {
	Text  string     `json:"text"`
	Level risk.Level `json:"level"`
}

func (b Badge) Color() string { return b.Level.Color() }

// Snapshot is a consistent copy of everything the page shows.
type Snapshot struct {
	Texts      map[string]string `json:"texts"`
	Badge      *Badge            `json:"badge,omitempty"`
	Drinks     *drinks.Advice    `json:"drinks,omitempty"`
	Chart      *chart.Config     `json:"chart,omitempty"`
	WidgetID   string            `json:"widgetId,omitempty"`
	RenderedAt time.Time         `json:"renderedAt"`
}

// Text returns the value of a text target, or Placeholder.
func (s Snapshot) Text(target string) string {
	if v, ok := s.Texts[target]; ok && v != "" {
		return v
	}
	return Placeholder
}

type Page struct {
	mu         sync.RWMutex
	targets    map[string]bool
	texts      map[string]string
	badge      *Badge
	drinks     *drinks.Advice
	canvas     *chart.CanvasSurface
	renderedAt time.Time
	logger     *slog.Logger
}

// New builds a page holding the given targets, or DefaultTargets when none
// are given. Text targets start as placeholders.
func New(logger *slog.Logger, targets ...string) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	p := &Page{
		targets: make(map[string]bool, len(targets)),
		texts:   map[string]string{},
		logger:  logger.With("component", "page"),
	}
	for _, t := range targets {
		p.targets[t] = true
		switch t {
		case TargetChart:
			p.canvas = chart.NewCanvasSurface(t)
		case TargetDanger:
			p.texts[t] = risk.DangerPlaceholder
		case TargetRiskBadge:
			p.badge = &Badge{Text: risk.BadgePlaceholder, Level: risk.Normal}
		case TargetDrinks:
		default:
			p.texts[t] = Placeholder
		}
	}
	return p
}

// Has reports whether target exists on this page.
func (p *Page) Has(target string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.targets[target]
}

// SetText updates a text target. A missing target is logged and skipped.
func (p *Page) SetText(target, text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.targets[target] {
		p.logger.Warn("presentation target missing", "target", target)
		return false
	}
	p.texts[target] = text
	return true
}

func (p *Page) SetBadge(b Badge) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.targets[TargetRiskBadge] {
		p.logger.Warn("presentation target missing", "target", TargetRiskBadge)
		return false
	}
	p.badge = &b
	return true
}

func (p *Page) SetDrinks(a drinks.Advice) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.targets[TargetDrinks] {
		p.logger.Warn("presentation target missing", "target", TargetDrinks)
		return false
	}
	a.Assessments = append([]drinks.Assessment(nil), a.Assessments...)
	p.drinks = &a
	return true
}

// MarkRendered records when the page last reflected a successful fetch.
func (p *Page) MarkRendered(t time.Time) {
	p.mu.Lock()
	p.renderedAt = t
	p.mu.Unlock()
}

// Surface lets the chart renderer find the canvas.
func (p *Page) Surface(id string) (chart.Surface, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if id != TargetChart || p.canvas == nil {
		return nil, false
	}
	return p.canvas, true
}

// Canvas exposes the chart surface, nil when the page has no chart target.
func (p *Page) Canvas() *chart.CanvasSurface {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.canvas
}

func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{Texts: maps.Clone(p.texts), RenderedAt: p.renderedAt}
	if p.badge != nil {
		b := *p.badge
		s.Badge = &b
	}
	if p.drinks != nil {
		d := *p.drinks
		d.Assessments = append([]drinks.Assessment(nil), d.Assessments...)
		s.Drinks = &d
	}
	if p.canvas != nil {
		if cfg, id, ok := p.canvas.Mounted(); ok {
			s.Chart = &cfg
			s.WidgetID = id
		}
	}
	return s
}

// Restore seeds text, badge and drink targets from a saved snapshot. Targets
// the page lacks are ignored. The chart is not touched; remount it through
// the renderer so the single-widget rule holds.
func (p *Page) Restore(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for target, text := range s.Texts {
		if p.targets[target] {
			p.texts[target] = text
		}
	}
	if s.Badge != nil && p.targets[TargetRiskBadge] {
		b := *s.Badge
		p.badge = &b
	}
	if s.Drinks != nil && p.targets[TargetDrinks] {
		d := *s.Drinks
		p.drinks = &d
	}
	p.renderedAt = s.RenderedAt
}
