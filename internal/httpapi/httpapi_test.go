package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/2co2co0417/P-Alert/internal/config"
)

type fakeMQTT bool

func (f fakeMQTT) IsConnected() bool { return bool(f) }

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name     string
		mqtt     ConnectionReporter
		wantMQTT string
	}{
		{"mqtt disabled", nil, "disabled"},
		{"mqtt connected", fakeMQTT(true), "connected"},
		{"mqtt down", fakeMQTT(false), "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := NewMux(openDB(t), "", tt.mqtt)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; want 200", rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != "ok" || body["mqtt"] != tt.wantMQTT {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestHealthz_dbDown(t *testing.T) {
	db := openDB(t)
	_ = db.Close()

	rec := httptest.NewRecorder()
	NewMux(db, "", nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", rec.Code)
	}
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "css", "dashboard.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	NewMux(openDB(t), dir, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/dashboard.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("static: status %d body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewMux(openDB(t), filepath.Join(dir, "missing"), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/dashboard.css", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing static dir: status %d; want 404", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	out := buf.String()
	for _, want := range []string{"http request", "status=418", "path=/x", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(config.Config{HTTPAddr: ":9999"}, http.NewServeMux(), nil)
	if srv.Addr != ":9999" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout not set")
	}
}
