package chart

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSurfaceNotFound is returned when the drawing surface a render targets
// does not exist.
var ErrSurfaceNotFound = errors.New("chart surface not found")

// Widget is one live chart instance on a surface.
type Widget interface {
	ID() string
	Config() Config
	Destroy() error
}

// Surface is something a chart can be drawn on.
type Surface interface {
	ID() string
	Mount(cfg Config) (Widget, error)
}

// SurfaceLookup resolves a surface by id.
type SurfaceLookup interface {
	Surface(id string) (Surface, bool)
}

// Slot holds at most one widget. It is the only place widgets are created or
// destroyed, so two widgets are never live at once.
type Slot struct {
	mu      sync.Mutex
	current Widget
}

// Replace tears down the held widget and then installs the one create returns.
// If teardown fails the old widget stays installed and create is not called.
// If create fails the slot is left empty.
func (s *Slot) Replace(create func() (Widget, error)) (Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		if err := s.current.Destroy(); err != nil {
			return nil, fmt.Errorf("destroy widget %s: %w", s.current.ID(), err)
		}
		s.current = nil
	}

	w, err := create()
	if err != nil {
		return nil, err
	}
	s.current = w
	return w, nil
}

// Current returns the held widget, or nil.
func (s *Slot) Current() Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Release destroys the held widget, leaving the slot empty.
func (s *Slot) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	if err := s.current.Destroy(); err != nil {
		return fmt.Errorf("destroy widget %s: %w", s.current.ID(), err)
	}
	s.current = nil
	return nil
}
