package chart

import (
	"sync"

	"github.com/google/uuid"
)

// CanvasSurface is an in-memory drawing surface. The page embeds whatever
// config is mounted on it; the browser draws it.
type CanvasSurface struct {
	id string

	mu      sync.Mutex
	live    int
	mounted *canvasWidget
}

func NewCanvasSurface(id string) *CanvasSurface {
	return &CanvasSurface{id: id}
}

func (c *CanvasSurface) ID() string { return c.id }

func (c *CanvasSurface) Mount(cfg Config) (Widget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &canvasWidget{id: uuid.NewString(), cfg: cfg, surface: c}
	c.live++
	c.mounted = w
	return w, nil
}

// Live is the number of widgets mounted and not yet destroyed.
func (c *CanvasSurface) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Mounted returns the config of the most recently mounted live widget.
func (c *CanvasSurface) Mounted() (Config, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted == nil {
		return Config{}, "", false
	}
	return c.mounted.cfg, c.mounted.id, true
}

type canvasWidget struct {
	id        string
	cfg       Config
	surface   *CanvasSurface
	destroyed bool
}

func (w *canvasWidget) ID() string     { return w.id }
func (w *canvasWidget) Config() Config { return w.cfg }

// Destroy is idempotent.
func (w *canvasWidget) Destroy() error {
	s := w.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.destroyed {
		return nil
	}
	w.destroyed = true
	s.live--
	if s.mounted == w {
		s.mounted = nil
	}
	return nil
}
