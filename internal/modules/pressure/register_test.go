package pressure

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/db/migrate"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
	"github.com/2co2co0417/P-Alert/internal/mqtt"
)

type staticFetcher string

func (f staticFetcher) FetchPressure(context.Context) ([]byte, error) { return []byte(f), nil }

type fakeSubscriber struct {
	handler func(mqtt.Notification) error
}

func (f *fakeSubscriber) SetMessageHandler(h func(mqtt.Notification) error) { f.handler = h }

const nightPayload = `{"labels":["a","b","c"],"values":[1010,1008,1004],
	"danger_window":{"start":"2024-10-01T16:00:00","end":"2024-10-01T18:00:00","delta_hpa":-3,"start_i":0,"end_i":2},
	"risk":"注意","is_night_mode":true}`

func setup(t *testing.T) (*http.ServeMux, *Feature, *fakeSubscriber) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.Run(context.Background(), db))

	mux := http.NewServeMux()
	sub := &fakeSubscriber{}
	f := RegisterFeature(mux, db, config.Config{DashboardUserID: 1}, staticFetcher(nightPayload), nil, sub, nil)
	return mux, f, sub
}

func TestRegisterFeature_preferencesFlowIntoAdvice(t *testing.T) {
	mux, f, _ := setup(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/drinks/preferences", strings.NewReader(`{"drinks":["beer","sake"]}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Refreshed bool          `json:"refreshed"`
		Snapshot  page.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Refreshed)
	require.NotNil(t, resp.Snapshot.Drinks)
	require.Len(t, resp.Snapshot.Drinks.Assessments, 2)
	assert.Equal(t, drinks.Avoid, resp.Snapshot.Drinks.Assessments[0].Tier)
	assert.Equal(t, drinks.Moderate, resp.Snapshot.Drinks.Assessments[1].Tier)
	assert.Equal(t, 1, f.Dashboard.Page().Canvas().Live())
}

func TestRegisterFeature_mqttTriggersRefresh(t *testing.T) {
	_, f, sub := setup(t)
	require.NotNil(t, sub.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Refresher.Run(ctx) }()

	require.NoError(t, sub.handler(mqtt.Notification{Source: "job", Timestamp: time.Now()}))

	assert.Eventually(t, func() bool {
		return !f.Dashboard.Snapshot().RenderedAt.IsZero()
	}, 2*time.Second, 10*time.Millisecond)
}
