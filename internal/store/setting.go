package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridiancap/cms-apiserver/types"
)

// SettingRepository handles persistence for site settings. Settings are
// keyed by setting_key; writes are upserts against the key rather than
// the surrogate id, so Set is idempotent per key.
type SettingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Set inserts the setting or, when the key already exists, replaces its
// value, type, and category. The ON CONFLICT clause makes the upsert a
// single statement, so two concurrent writers cannot produce a duplicate
// key.
func (r *SettingRepository) Set(ctx context.Context, setting types.Setting) error {
	const query = `
		INSERT INTO settings (setting_key, setting_value, setting_type, category, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (setting_key) DO UPDATE
		SET setting_value = EXCLUDED.setting_value,
			setting_type = EXCLUDED.setting_type,
			category = EXCLUDED.category,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(
		ctx,
		query,
		setting.SettingKey,
		setting.SettingValue,
		setting.SettingType,
		setting.Category,
		time.Now(),
	)
	return err
}

// List returns every setting ordered by category, then key, so repeated
// reads against unchanged data yield an identical order.
func (r *SettingRepository) List(ctx context.Context) ([]types.Setting, error) {
	const query = `
		SELECT id, setting_key, setting_value, setting_type, category, updated_at
		FROM settings
		ORDER BY category ASC, setting_key ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]types.Setting, 0)
	for rows.Next() {
		var s types.Setting
		if err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.SettingType, &s.Category, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Map returns all settings as a key→value map, the shape the public
// settings endpoint serves.
func (r *SettingRepository) Map(ctx context.Context) (map[string]string, error) {
	const query = `SELECT setting_key, setting_value FROM settings`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
