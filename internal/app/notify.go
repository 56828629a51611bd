package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/mqtt"
)

// Notify publishes one refresh notification on MQTT_TOPIC.
func Notify(ctx context.Context, cfg config.Config, reason string, logger *slog.Logger) error {
	if cfg.MQTTBroker == "" {
		return errors.New("notify needs MQTT_BROKER")
	}
	pub, err := mqtt.NewPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer pub.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pub.Connect(connectCtx); err != nil {
		return err
	}
	return pub.Publish(mqtt.Notification{Source: cfg.MQTTClientID, Reason: reason})
}
