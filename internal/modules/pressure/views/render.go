// Package views renders the dashboard page and its HTMX partial.
package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS parses templates under dir. Tests use it with fstest
// file systems.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded templates. Call once at startup; the
// server must not start if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DrinkItem is one assessed drink row.
type DrinkItem struct {
	Icon      string
	Name      string
	Score     string
	TierLabel string
	TierClass string
}

// DrinkOption is one checkbox in the preferences form.
type DrinkOption struct {
	Key      string
	Name     string
	Icon     string
	Selected bool
}

// DashboardData is the view model for both the page and the partial.
type DashboardData struct {
	Current     string
	CurrentTime string
	Delta3h     string
	Danger      string
	BadgeText   string
	BadgeColor  string
	BadgeLevel  string

	HasChart   bool
	ChartJSON  string
	WidgetID   string
	RenderedAt string

	DrinkMessage string
	Drinks       []DrinkItem
	Options      []DrinkOption

	// RefreshSeconds drives hx-trigger polling on the partial; 0 disables it.
	RefreshSeconds int
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderDashboardPartial executes only the live panel, for HTMX swaps.
func RenderDashboardPartial(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/dashboard.html", data)
}
