package chart

import (
	"fmt"
	"log/slog"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/payload"
)

// Renderer draws the pressure chart into a Slot.
type Renderer struct {
	surfaces SurfaceLookup
	slot     Slot
	logger   *slog.Logger
}

func NewRenderer(surfaces SurfaceLookup, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{surfaces: surfaces, logger: logger.With("component", "chart")}
}

// Render builds the config for series and mounts it on surfaceID, replacing
// whatever widget was live before.
func (r *Renderer) Render(surfaceID string, series payload.Series, window *payload.DangerWindow, nowIndex *int) (Widget, error) {
	return r.Mount(surfaceID, BuildConfig(series, window, nowIndex))
}

// Mount installs a prebuilt config. A missing surface leaves the current
// widget alone.
func (r *Renderer) Mount(surfaceID string, cfg Config) (Widget, error) {
	surface, ok := r.surfaces.Surface(surfaceID)
	if !ok {
		r.logger.Warn("chart surface missing", "surface", surfaceID)
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, surfaceID)
	}

	w, err := r.slot.Replace(func() (Widget, error) {
		return surface.Mount(cfg)
	})
	if err != nil {
		r.logger.Error("chart render failed", "surface", surfaceID, "error", err)
		return nil, err
	}
	r.logger.Debug("chart rendered", "surface", surfaceID, "widget", w.ID(), "points", len(cfg.Data.Labels))
	return w, nil
}

// Current is the live widget, or nil before the first render.
func (r *Renderer) Current() Widget {
	return r.slot.Current()
}

// Close destroys the live widget.
func (r *Renderer) Close() error {
	return r.slot.Release()
}
