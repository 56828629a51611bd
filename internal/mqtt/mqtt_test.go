package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/2co2co0417/P-Alert/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTTopic:    "palert/pressure/updated",
		MQTTClientID: "palert-test",
	}
}

func newTestSubscriber(t *testing.T) *Subscriber {
	t.Helper()
	s, err := NewSubscriber(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 10, 1, 15, 0, 0, 0, time.UTC) }
	return s
}

func TestNewSubscriber_requiresBrokerAndTopic(t *testing.T) {
	cfg := testConfig()
	cfg.MQTTBroker = ""
	if _, err := NewSubscriber(cfg, nil); err == nil {
		t.Error("NewSubscriber(no broker) = nil error")
	}
	cfg = testConfig()
	cfg.MQTTTopic = ""
	if _, err := NewSubscriber(cfg, nil); err == nil {
		t.Error("NewSubscriber(no topic) = nil error")
	}
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"valid", `{"source":"pressure-job","timestamp":"2024-10-01T14:58:00Z"}`, 1},
		{"with reason", `{"source":"pressure-job","timestamp":"2024-10-01T14:58:00Z","reason":"hourly"}`, 1},
		{"not json", `refresh`, 0},
		{"missing source", `{"timestamp":"2024-10-01T14:58:00Z"}`, 0},
		{"missing timestamp", `{"source":"pressure-job"}`, 0},
		{"stale", `{"source":"pressure-job","timestamp":"2024-10-01T13:00:00Z"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubscriber(t)
			got := 0
			s.SetMessageHandler(func(n Notification) error {
				got++
				if n.Source != "pressure-job" {
					t.Errorf("source = %q", n.Source)
				}
				return nil
			})
			s.handleMessage("palert/pressure/updated", []byte(tt.payload))
			if got != tt.want {
				t.Errorf("handler calls = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestHandleMessage_noHandlerAndHandlerError(t *testing.T) {
	s := newTestSubscriber(t)
	payload := []byte(`{"source":"job","timestamp":"2024-10-01T14:59:00Z"}`)
	s.handleMessage("t", payload)

	calls := 0
	s.SetMessageHandler(func(Notification) error {
		calls++
		return errors.New("refresh queue full")
	})
	s.handleMessage("t", payload)
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
}

func TestValidateNotification_maxAgeDisabled(t *testing.T) {
	s := newTestSubscriber(t)
	s.maxAge = 0
	n := Notification{Source: "job", Timestamp: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.validateNotification(n); err != nil {
		t.Errorf("validateNotification = %v; want nil", err)
	}
}

func TestConnect_unreachableBrokerHonoursContext(t *testing.T) {
	s := newTestSubscriber(t)
	defer s.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := s.Connect(ctx)
	if err == nil {
		t.Fatal("Connect to unreachable broker = nil")
	}
	if s.IsConnected() {
		t.Error("IsConnected() = true")
	}
}

func TestConnect_afterDisconnect(t *testing.T) {
	s := newTestSubscriber(t)
	s.Disconnect()
	s.Disconnect()
	if err := s.Connect(context.Background()); err == nil {
		t.Error("Connect after Disconnect = nil error")
	}
}
