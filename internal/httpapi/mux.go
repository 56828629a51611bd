package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
)

// NewMux registers the healthcheck and, when staticDir exists, /static/.
// Feature routes are added by their modules.
func NewMux(db *sql.DB, staticDir string, mqtt ConnectionReporter) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, mqtt)
	registerStatic(mux, staticDir)
	return mux
}

func registerStatic(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		return
	}
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		slog.Warn("static dir not found; /static/ disabled", "staticDir", staticDir)
		return
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
}
