package pressure

import (
	"log/slog"

	"github.com/2co2co0417/P-Alert/internal/mqtt"
)

type trigger interface {
	Trigger()
}

// registerMQTTHandler turns each refresh notification into a refresh request.
func registerMQTTHandler(subscriber mqtt.MQTTSubscriber, t trigger, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	subscriber.SetMessageHandler(func(n mqtt.Notification) error {
		logger.Debug("refresh requested over mqtt",
			"source", n.Source,
			"timestamp", n.Timestamp,
			"reason", n.Reason,
		)
		t.Trigger()
		return nil
	})
}
