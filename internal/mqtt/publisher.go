package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/2co2co0417/P-Alert/internal/config"
)

// Publisher announces fresh pressure data on cfg.MQTTTopic. Running
// dashboards subscribed to the topic refresh when it fires.
type Publisher struct {
	*conn
	topic string
	now   func() time.Time
}

func NewPublisher(cfg config.Config, logger *slog.Logger) (*Publisher, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	// A distinct id so publishing never kicks a running dashboard off the broker.
	c := newConn(cfg, cfg.MQTTClientID+"-pub", false, logger.With("component", "mqtt"), nil)
	return &Publisher{conn: c, topic: cfg.MQTTTopic, now: time.Now}, nil
}

func (p *Publisher) Connect(ctx context.Context) error { return p.connect(ctx) }

func (p *Publisher) IsConnected() bool { return p.isConnected() }

func (p *Publisher) Disconnect() {
	p.stop(nil)
	p.logger.Info("mqtt publisher disconnected")
}

// Publish sends n, stamping Timestamp when it is zero.
func (p *Publisher) Publish(n Notification) error {
	if !p.isConnected() {
		return fmt.Errorf("mqtt publisher not connected")
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = p.now()
	}
	data, err := encodeNotification(n)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		p.logger.Error("failed to publish refresh notification", "topic", p.topic, "error", err)
		return fmt.Errorf("publish notification: %w", err)
	}
	p.logger.Info("published refresh notification", "topic", p.topic, "source", n.Source, "reason", n.Reason)
	return nil
}

func encodeNotification(n Notification) ([]byte, error) {
	if n.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return data, nil
}
