// Package pressure wires the pressure dashboard: its controller, routes and
// refresh triggers.
package pressure

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/controller"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/dashboard"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/repository"
	"github.com/2co2co0417/P-Alert/internal/mqtt"
)

// Feature is the assembled dashboard.
type Feature struct {
	Dashboard *dashboard.Controller
	Refresher *dashboard.Refresher
}

// RegisterFeature builds the dashboard pipeline over db and the snapshot
// store, mounts its routes on mux and, when subscriber is non-nil, hooks
// push notifications to the refresher.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, fetcher dashboard.Fetcher, snapshots repository.SnapshotStore, subscriber mqtt.MQTTSubscriber, logger *slog.Logger) *Feature {
	prefs := repository.NewPreferencesRepository(db)
	if snapshots == nil {
		snapshots = repository.NewSQLiteSnapshotStore(db)
	}

	ctrl := dashboard.NewController(dashboard.Deps{
		Fetcher:     fetcher,
		Preferences: prefs,
		Snapshots:   snapshots,
		Page:        page.New(logger),
		UserID:      cfg.DashboardUserID,
		Logger:      logger,
	})
	refresher := dashboard.NewRefresher(ctrl, cfg.RefreshInterval, logger)

	pressureController := controller.NewPressureController(ctrl, prefs, cfg.DashboardUserID, cfg.RefreshInterval, refresher.Trigger)
	pressureController.RegisterRoutes(mux)

	if subscriber != nil {
		registerMQTTHandler(subscriber, refresher, logger)
	}
	return &Feature{Dashboard: ctrl, Refresher: refresher}
}
