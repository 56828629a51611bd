package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

//go:embed sql/get-preferred-drinks.sql
var getPreferredDrinksSQL string

//go:embed sql/upsert-preferred-drinks.sql
var upsertPreferredDrinksSQL string

type PreferencesRepository interface {
	GetPreferredDrinks(ctx context.Context, userID int64) ([]string, error)
	SetPreferredDrinks(ctx context.Context, userID int64, keys []string) error
}

type preferencesImpl struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) PreferencesRepository {
	return &preferencesImpl{db: db}
}

// GetPreferredDrinks returns the user's drink keys in the order they were
// saved. A user without settings, or with an unreadable list, has none.
func (r *preferencesImpl) GetPreferredDrinks(ctx context.Context, userID int64) ([]string, error) {
	var raw sql.NullString
	err := r.db.QueryRowContext(ctx, getPreferredDrinksSQL, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferred drinks for user %d: %w", userID, err)
	}
	if !raw.Valid || raw.String == "" {
		return []string{}, nil
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw.String), &keys); err != nil {
		slog.Warn("preferred drinks unreadable; treating as none", "user_id", userID, "error", err)
		return []string{}, nil
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (r *preferencesImpl) SetPreferredDrinks(ctx context.Context, userID int64, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	body, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode preferred drinks: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertPreferredDrinksSQL, userID, string(body)); err != nil {
		return fmt.Errorf("save preferred drinks for user %d: %w", userID, err)
	}
	return nil
}
