package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
)

//go:embed sql/get-snapshot.sql
var getSnapshotSQL string

//go:embed sql/upsert-snapshot.sql
var upsertSnapshotSQL string

// ErrCacheMiss means no snapshot has been saved for the dashboard yet.
var ErrCacheMiss = errors.New("snapshot not found")

// SnapshotStore persists the last known good page state.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, dashboardID string, s page.Snapshot) error
	LoadSnapshot(ctx context.Context, dashboardID string) (page.Snapshot, error)
}

type sqliteSnapshots struct {
	db *sql.DB
}

func NewSQLiteSnapshotStore(db *sql.DB) SnapshotStore {
	return &sqliteSnapshots{db: db}
}

func (s *sqliteSnapshots) SaveSnapshot(ctx context.Context, dashboardID string, snap page.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	renderedAt := snap.RenderedAt.UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsertSnapshotSQL, dashboardID, string(body), renderedAt); err != nil {
		return fmt.Errorf("save snapshot %q: %w", dashboardID, err)
	}
	return nil
}

func (s *sqliteSnapshots) LoadSnapshot(ctx context.Context, dashboardID string) (page.Snapshot, error) {
	var body, renderedAt string
	err := s.db.QueryRowContext(ctx, getSnapshotSQL, dashboardID).Scan(&body, &renderedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return page.Snapshot{}, ErrCacheMiss
	}
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("load snapshot %q: %w", dashboardID, err)
	}
	return decodeSnapshot(dashboardID, body)
}

func decodeSnapshot(dashboardID, body string) (page.Snapshot, error) {
	var snap page.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return page.Snapshot{}, fmt.Errorf("decode snapshot %q: %w", dashboardID, err)
	}
	return snap, nil
}
