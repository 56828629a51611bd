// Package mqtt carries refresh notifications between whatever produces
// pressure data and running dashboards.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/2co2co0417/P-Alert/internal/config"
)

const notificationMaxAge = 10 * time.Minute

// MQTTSubscriber is what feature modules need to hook into refresh pushes.
type MQTTSubscriber interface {
	SetMessageHandler(handler func(n Notification) error)
}

type Subscriber struct {
	*conn
	topic string

	handlerMu sync.RWMutex
	handler   func(n Notification) error
	// maxAge drops notifications older than this; 0 keeps all.
	maxAge time.Duration
	now    func() time.Time
}

// NewSubscriber builds a subscriber for cfg.MQTTTopic. It does not connect.
func NewSubscriber(cfg config.Config, logger *slog.Logger) (*Subscriber, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		topic:  cfg.MQTTTopic,
		maxAge: notificationMaxAge,
		now:    time.Now,
	}
	// Clean sessions drop subscriptions, so subscribe on every (re)connect.
	s.conn = newConn(cfg, cfg.MQTTClientID, true, logger.With("component", "mqtt"), func() {
		if err := s.subscribe(); err != nil {
			s.logger.Error("mqtt subscribe failed", "topic", s.topic, "error", err)
		}
	})
	return s, nil
}

// SetMessageHandler sets the handler called for each valid notification.
// Set it before Connect so queued messages are not dropped.
func (s *Subscriber) SetMessageHandler(handler func(n Notification) error) {
	s.handlerMu.Lock()
	s.handler = handler
	s.handlerMu.Unlock()
}

// Connect blocks until the broker accepts the connection or ctx ends.
// Subscribing happens in the connect callback.
func (s *Subscriber) Connect(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *Subscriber) IsConnected() bool { return s.isConnected() }

// Disconnect unsubscribes and closes the connection. Safe to call twice.
func (s *Subscriber) Disconnect() {
	s.stop(func() {
		s.client.Unsubscribe(s.topic).WaitTimeout(2 * time.Second)
	})
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) subscribe() error {
	const qos = byte(1)
	token := s.client.Subscribe(s.topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		s.logger.Warn("failed to parse refresh notification", "topic", topic, "error", err, "payload", string(payload))
		return
	}
	if err := s.validateNotification(n); err != nil {
		s.logger.Warn("invalid refresh notification", "topic", topic, "source", n.Source, "error", err)
		return
	}

	s.handlerMu.RLock()
	handler := s.handler
	s.handlerMu.RUnlock()
	if handler == nil {
		s.logger.Debug("refresh notification dropped; no handler", "source", n.Source)
		return
	}
	if err := handler(n); err != nil {
		s.logger.Error("message handler failed", "topic", topic, "source", n.Source, "error", err)
		return
	}
	s.logger.Debug("processed refresh notification", "source", n.Source, "timestamp", n.Timestamp)
}

func (s *Subscriber) validateNotification(n Notification) error {
	if n.Source == "" {
		return fmt.Errorf("source is required")
	}
	if n.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if s.maxAge > 0 && s.now().Sub(n.Timestamp) > s.maxAge {
		return fmt.Errorf("notification is stale: %s", n.Timestamp.Format(time.RFC3339))
	}
	return nil
}
