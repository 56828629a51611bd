// Package dashboard runs the fetch, normalize, present, render and advise
// pipeline against a page. It is the only package that does I/O for the
// dashboard or knows which target shows what.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/chart"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/payload"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/repository"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/risk"
)

// DefaultID names the single dashboard in the snapshot store.
const DefaultID = "default"

type Fetcher interface {
	FetchPressure(ctx context.Context) ([]byte, error)
}

type Deps struct {
	Fetcher     Fetcher
	Preferences repository.PreferencesRepository
	Snapshots   repository.SnapshotStore
	Page        *page.Page
	UserID      int64
	DashboardID string
	Logger      *slog.Logger
	Now         func() time.Time
}

type Controller struct {
	mu sync.Mutex

	fetcher     Fetcher
	prefs       repository.PreferencesRepository
	snapshots   repository.SnapshotStore
	page        *page.Page
	renderer    *chart.Renderer
	userID      int64
	dashboardID string
	logger      *slog.Logger
	now         func() time.Time
}

func NewController(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	id := d.DashboardID
	if id == "" {
		id = DefaultID
	}
	p := d.Page
	if p == nil {
		p = page.New(logger)
	}
	return &Controller{
		fetcher:     d.Fetcher,
		prefs:       d.Preferences,
		snapshots:   d.Snapshots,
		page:        p,
		renderer:    chart.NewRenderer(p, logger),
		userID:      d.UserID,
		dashboardID: id,
		logger:      logger.With("component", "dashboard"),
		now:         now,
	}
}

// Refresh fetches once and threads the result through every stage in order.
// Concurrent calls run one at a time. On error the page keeps what it showed
// before; insufficient data leaves it completely untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.now()
	body, err := c.fetcher.FetchPressure(ctx)
	if err != nil {
		c.logger.Error("fetch pressure failed", "error", err)
		return fmt.Errorf("fetch: %w", err)
	}
	return c.apply(ctx, body, start)
}

// Apply runs the pipeline on an already fetched body.
func (c *Controller) Apply(ctx context.Context, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, body, c.now())
}

func (c *Controller) apply(ctx context.Context, body []byte, start time.Time) error {
	raw, err := payload.Decode(body)
	if err != nil {
		c.logger.Error("pressure payload malformed", "error", err)
		return err
	}
	model, err := payload.Normalize(raw)
	if err != nil {
		if errors.Is(err, payload.ErrInsufficientData) {
			c.logger.Warn("pressure series too short; keeping previous render", "error", err)
		} else {
			c.logger.Error("normalize pressure payload failed", "error", err)
		}
		return err
	}

	pres := risk.Present(model)
	c.page.SetText(page.TargetCurrent, formatHpa(model.Current.Hpa))
	c.page.SetText(page.TargetCurrentTime, orPlaceholder(model.Current.ObservedAt))
	c.page.SetText(page.TargetDelta3h, formatDelta3h(model.Delta3h))
	danger := pres.DangerLine
	if danger == "" {
		danger = risk.DangerPlaceholder
	}
	c.page.SetText(page.TargetDanger, danger)
	c.page.SetBadge(page.Badge{Text: pres.BadgeText, Level: pres.Level})

	var errs []error
	if _, err := c.renderer.Render(page.TargetChart, model.Series, model.Window, model.NowIndex); err != nil {
		// A page without a chart target is a layout choice, not a failure.
		if !errors.Is(err, chart.ErrSurfaceNotFound) {
			errs = append(errs, fmt.Errorf("render chart: %w", err))
		}
	}

	var delta *float64
	if model.Window != nil {
		delta = model.Window.DeltaHpa
	}
	if advice, err := c.advise(ctx, delta, model.NightMode); err != nil {
		c.logger.Error("load drink preferences failed", "user_id", c.userID, "error", err)
		errs = append(errs, err)
	} else {
		c.page.SetDrinks(advice)
	}

	c.page.MarkRendered(c.now())
	c.save(ctx)

	c.logger.Info("dashboard refreshed",
		"points", model.Series.Len(),
		"gaps", model.Series.Gaps(),
		"risk", pres.Level.String(),
		"night_mode", model.NightMode,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)
	return errors.Join(errs...)
}

func (c *Controller) advise(ctx context.Context, delta *float64, night bool) (drinks.Advice, error) {
	if !night {
		return drinks.Advise(nil, delta, false), nil
	}
	var keys []string
	if c.prefs != nil {
		var err error
		keys, err = c.prefs.GetPreferredDrinks(ctx, c.userID)
		if err != nil {
			return drinks.Advice{}, fmt.Errorf("preferred drinks: %w", err)
		}
	}
	return drinks.Advise(keys, delta, true), nil
}

func (c *Controller) save(ctx context.Context) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveSnapshot(ctx, c.dashboardID, c.page.Snapshot()); err != nil {
		c.logger.Error("save dashboard snapshot failed", "dashboard_id", c.dashboardID, "error", err)
	}
}

// Restore seeds the page from the last saved snapshot, if any, and remounts
// its chart. A missing snapshot is not an error.
func (c *Controller) Restore(ctx context.Context) error {
	if c.snapshots == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.snapshots.LoadSnapshot(ctx, c.dashboardID)
	if errors.Is(err, repository.ErrCacheMiss) {
		c.logger.Debug("no saved dashboard snapshot", "dashboard_id", c.dashboardID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore dashboard: %w", err)
	}
	c.page.Restore(snap)
	if snap.Chart != nil {
		if _, err := c.renderer.Mount(page.TargetChart, *snap.Chart); err != nil && !errors.Is(err, chart.ErrSurfaceNotFound) {
			return fmt.Errorf("restore chart: %w", err)
		}
	}
	c.logger.Info("dashboard restored", "dashboard_id", c.dashboardID, "rendered_at", snap.RenderedAt)
	return nil
}

// Snapshot is the current page state.
func (c *Controller) Snapshot() page.Snapshot {
	return c.page.Snapshot()
}

// Page is the page this controller writes to.
func (c *Controller) Page() *page.Page {
	return c.page
}

// Close tears down the live chart widget.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Close()
}

func formatHpa(v *float64) string {
	if v == nil {
		return page.Placeholder
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatDelta3h(v *float64) string {
	if v == nil {
		return page.Placeholder
	}
	return risk.FormatDelta(*v) + " hPa"
}

func orPlaceholder(s string) string {
	if s == "" {
		return page.Placeholder
	}
	return s
}
