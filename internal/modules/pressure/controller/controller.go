package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/repository"
)

// Dashboard is the part of the dashboard controller the handlers use.
type Dashboard interface {
	Refresh(ctx context.Context) error
	Snapshot() page.Snapshot
}

type PressureController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type pressureControllerImpl struct {
	dashboard       Dashboard
	preferences     repository.PreferencesRepository
	userID          int64
	refreshInterval time.Duration
	// notify asks for an asynchronous refresh after preferences change.
	notify func()
}

func NewPressureController(d Dashboard, prefs repository.PreferencesRepository, userID int64, refreshInterval time.Duration, notify func()) PressureController {
	if notify == nil {
		notify = func() {}
	}
	return &pressureControllerImpl{
		dashboard:       d,
		preferences:     prefs,
		userID:          userID,
		refreshInterval: refreshInterval,
		notify:          notify,
	}
}

func (c *pressureControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/dashboard", c.handleDashboardPartial)
	mux.HandleFunc("GET /api/v1/dashboard", c.handleSnapshot)
	mux.HandleFunc("POST /api/v1/dashboard/refresh", c.handleRefresh)
	mux.HandleFunc("GET /api/v1/drinks/catalog", c.handleCatalog)
	mux.HandleFunc("GET /api/v1/drinks/preferences", c.handleGetPreferences)
	mux.HandleFunc("PUT /api/v1/drinks/preferences", c.handlePutPreferences)
}
