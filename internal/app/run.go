package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/2co2co0417/P-Alert/internal/backend"
	"github.com/2co2co0417/P-Alert/internal/config"
	db "github.com/2co2co0417/P-Alert/internal/db"
	"github.com/2co2co0417/P-Alert/internal/db/migrate"
	httpapi "github.com/2co2co0417/P-Alert/internal/httpapi"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/repository"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/views"
	"github.com/2co2co0417/P-Alert/internal/mqtt"
)

const snapshotTTL = 24 * time.Hour

// Run serves the dashboard until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"backendURL", cfg.BackendURL,
		"backendPath", cfg.BackendPath,
		"backendTimeout", cfg.BackendTimeout,
		"refreshInterval", cfg.RefreshInterval,
		"redisAddr", cfg.RedisAddr,
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	snapshots, closeSnapshots := openSnapshotStore(ctx, cfg, dbConn, logger)
	defer closeSnapshots()

	client := backend.New(cfg, logger)
	defer client.Close()

	// The handler must be set before Connect so OnConnect subscribes with it.
	var (
		subscriber *mqtt.Subscriber
		reporter   httpapi.ConnectionReporter
		hook       mqtt.MQTTSubscriber
	)
	if cfg.MQTTBroker != "" {
		subscriber, err = mqtt.NewSubscriber(cfg, logger)
		if err != nil {
			return err
		}
		reporter, hook = subscriber, subscriber
	}

	mux := httpapi.NewMux(dbConn, cfg.StaticDir, reporter)
	feature := pressure.RegisterFeature(mux, dbConn, cfg, client, snapshots, hook, logger)
	defer func() {
		if err := feature.Dashboard.Close(); err != nil {
			logger.Warn("dashboard close", "error", err)
		}
	}()

	if err := feature.Dashboard.Restore(ctx); err != nil {
		logger.Warn("snapshot restore failed", "error", err)
	}

	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		_ = feature.Refresher.Run(ctx)
	}()

	if subscriber != nil {
		// Connect blocks until the broker answers; the dashboard works without it.
		go func() {
			if err := subscriber.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
			}
		}()
	}

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-refreshDone

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// OpenDatabase opens the configured database, applies pending migrations and
// checks the connection answers.
func OpenDatabase(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := migrate.Run(ctx, dbConn); err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}

	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	if ok != 1 {
		_ = db.Close(dbConn)
		return nil, errors.New("database connection failed")
	}
	logger.Info("database connection successful")
	return dbConn, nil
}

// openSnapshotStore prefers redis when REDIS_ADDR is set and reachable, and
// falls back to the sqlite table otherwise.
func openSnapshotStore(ctx context.Context, cfg config.Config, dbConn *sql.DB, logger *slog.Logger) (repository.SnapshotStore, func()) {
	if cfg.RedisAddr == "" {
		return repository.NewSQLiteSnapshotStore(dbConn), func() {}
	}

	rdb := repository.NewRedisClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, snapshots kept in sqlite", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return repository.NewSQLiteSnapshotStore(dbConn), func() {}
	}
	logger.Info("snapshots kept in redis", "addr", cfg.RedisAddr)
	return repository.NewKVSnapshotStore(repository.NewRedisKV(rdb), snapshotTTL), func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close", "error", err)
		}
	}
}
