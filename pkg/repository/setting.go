package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/newsnexus/pkg/domain"
)

// setting keys
const (
	KeySettings = "settings"
	KeyStats    = "stats"
)

// SettingRepository handles setting-related database operations
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetSetting retrieves a setting value, empty string if missing
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a setting value
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	return withRetry(ctx, func() error {
		if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("set setting: %w", err)
		}
		return nil
	})
}

// DeleteSetting removes a setting, missing keys are fine
func (r *SettingRepository) DeleteSetting(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// ListSettings returns all stored settings ordered by key
func (r *SettingRepository) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	var res []domain.Setting
	if err := r.db.SelectContext(ctx, &res, "SELECT key, value, updated_at FROM settings ORDER BY key"); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return res, nil
}

// LoadSettings returns stored settings merged over defaults. Nothing stored or a corrupt
// document yields the defaults, the latter is logged.
func (r *SettingRepository) LoadSettings(ctx context.Context, defaults domain.Settings) (domain.Settings, error) {
	raw, err := r.GetSetting(ctx, KeySettings)
	if err != nil {
		return domain.Settings{}, err
	}
	if raw == "" {
		return defaults.Clone(), nil
	}

	var saved domain.Settings
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		lgr.Printf("[WARN] stored settings are corrupt, using defaults: %v", err)
		return defaults.Clone(), nil
	}
	return saved.MergeDefaults(defaults), nil
}

// SaveSettings stores the whole settings document
func (r *SettingRepository) SaveSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return r.SetSetting(ctx, KeySettings, string(data))
}

// ResetSettings drops stored settings so defaults apply again
func (r *SettingRepository) ResetSettings(ctx context.Context) error {
	return r.DeleteSetting(ctx, KeySettings)
}

// SaveStats stores stats of the last aggregation run
func (r *SettingRepository) SaveStats(ctx context.Context, stats domain.AggregationStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return r.SetSetting(ctx, KeyStats, string(data))
}

// LoadStats returns stats of the last run, zero stats before the first run
func (r *SettingRepository) LoadStats(ctx context.Context) (domain.AggregationStats, error) {
	res := domain.AggregationStats{Sources: map[domain.SourceType]int{}}
	raw, err := r.GetSetting(ctx, KeyStats)
	if err != nil || raw == "" {
		return res, err
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		lgr.Printf("[WARN] stored stats are corrupt, ignoring: %v", err)
		return domain.AggregationStats{Sources: map[domain.SourceType]int{}}, nil
	}
	if res.Sources == nil {
		res.Sources = map[domain.SourceType]int{}
	}
	return res, nil
}
