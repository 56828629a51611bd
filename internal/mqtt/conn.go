package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/2co2co0417/P-Alert/internal/config"
)

var errStopped = errors.New("mqtt: stopped")

// conn tracks one broker connection for Subscriber and Publisher.
type conn struct {
	client mqtt.Client
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func validate(cfg config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("mqtt: MQTT_BROKER is empty")
	}
	if cfg.MQTTTopic == "" {
		return fmt.Errorf("mqtt: MQTT_TOPIC is empty")
	}
	return nil
}

// newConn builds the client. onConnect runs after every (re)connect,
// on paho's goroutine.
func newConn(cfg config.Config, clientID string, persistent bool, logger *slog.Logger, onConnect func()) *conn {
	c := &conn{logger: logger, stopCh: make(chan struct{})}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort)).
		SetClientID(clientID).
		SetCleanSession(true).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second)
	if persistent {
		opts.SetAutoReconnect(true).
			SetConnectRetry(true).
			SetConnectRetryInterval(5 * time.Second).
			SetMaxReconnectInterval(60 * time.Second)
	} else {
		opts.SetAutoReconnect(false).SetConnectTimeout(10 * time.Second)
	}

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "client_id", clientID)
		if onConnect != nil {
			onConnect()
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// connect waits for the first CONNACK. With connect retry on, paho keeps
// trying until ctx is done or stop is called.
func (c *conn) connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return errStopped
	default:
	}
	if c.isConnected() {
		return nil
	}

	token := c.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			c.setConnected(true)
			return nil
		}
		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			c.client.Disconnect(0)
			return errStopped
		default:
		}
	}
}

// stop is idempotent; connect fails after it.
func (c *conn) stop(before func()) {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if before != nil && c.isConnected() {
		before()
	}
	c.client.Disconnect(250)
	c.setConnected(false)
}

func (c *conn) isConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

func (c *conn) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
