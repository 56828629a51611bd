package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/views"
	"github.com/2co2co0417/P-Alert/internal/utils"
)

func (c *pressureControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	preferred, err := c.preferences.GetPreferredDrinks(r.Context(), c.userID)
	if err != nil {
		slog.Error("dashboard: get preferred drinks failed", "user_id", c.userID, "error", err)
		preferred = nil
	}
	data := buildDashboardData(c.dashboard.Snapshot(), preferred, c.refreshInterval)

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, &data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, buf.Bytes())
}

func (c *pressureControllerImpl) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	data := buildDashboardData(c.dashboard.Snapshot(), nil, c.refreshInterval)
	var buf bytes.Buffer
	if err := views.RenderDashboardPartial(&buf, &data); err != nil {
		slog.Error("dashboard partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	writeHTML(w, buf.Bytes())
}

func (c *pressureControllerImpl) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.dashboard.Snapshot())
}

type refreshResponse struct {
	Refreshed bool          `json:"refreshed"`
	Snapshot  page.Snapshot `json:"snapshot"`
}

// handleRefresh always answers with the page as it now stands. A failed
// refresh leaves the last good state in place, so it is not an HTTP error.
func (c *pressureControllerImpl) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := c.dashboard.Refresh(r.Context())
	if err != nil {
		slog.Warn("refresh request did not update the dashboard", "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, refreshResponse{Refreshed: err == nil, Snapshot: c.dashboard.Snapshot()})
}

func (c *pressureControllerImpl) handleCatalog(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, drinks.Catalog())
}

type preferencesBody struct {
	UserID int64    `json:"userId"`
	Drinks []string `json:"drinks"`
}

func (c *pressureControllerImpl) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	keys, err := c.preferences.GetPreferredDrinks(r.Context(), c.userID)
	if err != nil {
		slog.Error("get preferred drinks failed", "user_id", c.userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	utils.WriteJSON(w, http.StatusOK, preferencesBody{UserID: c.userID, Drinks: keys})
}

func (c *pressureControllerImpl) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var body preferencesBody
	if err := utils.DecodeJSON(r, &body, maxPreferencesBody); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	keys, err := parsePreferredDrinks(body.Drinks)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.preferences.SetPreferredDrinks(r.Context(), c.userID, keys); err != nil {
		slog.Error("save preferred drinks failed", "user_id", c.userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	c.notify()
	utils.WriteJSON(w, http.StatusOK, preferencesBody{UserID: c.userID, Drinks: keys})
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
