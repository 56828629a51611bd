package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/views"
)

const maxPreferencesBody = 4 << 10

var errTooManyDrinks = errors.New("too many drinks")

// parsePreferredDrinks normalizes keys, keeps first-seen order and rejects
// anything outside the catalog.
func parsePreferredDrinks(raw []string) ([]string, error) {
	if len(raw) > len(drinks.Catalog()) {
		return nil, fmt.Errorf("%w: at most %d", errTooManyDrinks, len(drinks.Catalog()))
	}
	seen := make(map[drinks.Key]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		k, ok := drinks.ParseKey(s)
		if !ok {
			return nil, fmt.Errorf("unknown drink %q", s)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, string(k))
	}
	return out, nil
}

// buildDashboardData flattens a snapshot into the template view model.
// preferred only marks the form checkboxes.
func buildDashboardData(s page.Snapshot, preferred []string, refresh time.Duration) views.DashboardData {
	data := views.DashboardData{
		Current:        s.Text(page.TargetCurrent),
		CurrentTime:    s.Text(page.TargetCurrentTime),
		Delta3h:        s.Text(page.TargetDelta3h),
		Danger:         s.Text(page.TargetDanger),
		RefreshSeconds: int(refresh / time.Second),
		WidgetID:       s.WidgetID,
	}
	if s.Badge != nil {
		data.BadgeText = s.Badge.Text
		data.BadgeColor = s.Badge.Color()
		data.BadgeLevel = s.Badge.Level.String()
	}
	if s.Chart != nil {
		if b, err := json.Marshal(s.Chart); err == nil {
			data.HasChart = true
			data.ChartJSON = string(b)
		}
	}
	if !s.RenderedAt.IsZero() {
		data.RenderedAt = s.RenderedAt.Local().Format("2006-01-02 15:04")
	}
	if s.Drinks == nil {
		data.DrinkMessage = page.Placeholder
	} else {
		data.DrinkMessage = s.Drinks.Message()
		for _, a := range s.Drinks.Assessments {
			data.Drinks = append(data.Drinks, views.DrinkItem{
				Icon:      a.Profile.Icon,
				Name:      a.Profile.DisplayName,
				Score:     strconv.FormatFloat(a.Score, 'f', 1, 64),
				TierLabel: a.Tier.Label(),
				TierClass: a.Tier.String(),
			})
		}
	}

	selected := make(map[drinks.Key]bool, len(preferred))
	for _, p := range preferred {
		if k, ok := drinks.ParseKey(p); ok {
			selected[k] = true
		}
	}
	for _, p := range drinks.Catalog() {
		data.Options = append(data.Options, views.DrinkOption{
			Key:      string(p.Key),
			Name:     p.DisplayName,
			Icon:     p.Icon,
			Selected: selected[p.Key],
		})
	}
	return data
}
