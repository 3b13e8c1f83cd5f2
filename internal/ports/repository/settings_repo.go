package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"timecard.service/internal/core/model"
)

// PostgresSettingsRepository stores the settings as a single JSON document.
// Missing settings come back zero-valued, not as an error: reporting code is
// expected to degrade gracefully when configuration is incomplete.
type PostgresSettingsRepository struct {
	DB *sql.DB
}

// NewSettingsRepository create new instance
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &PostgresSettingsRepository{DB: db}
}

// GetSettings returns the current settings document.
func (r *PostgresSettingsRepository) GetSettings(ctx context.Context) (model.Settings, error) {
	var doc []byte
	err := r.DB.QueryRowContext(ctx, `SELECT doc FROM settings WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return model.Settings{}, nil
	}
	if err != nil {
		return model.Settings{}, err
	}

	var s model.Settings
	if err := json.Unmarshal(doc, &s); err != nil {
		return model.Settings{}, fmt.Errorf("decode settings document: %w", err)
	}
	return s, nil
}

// SaveSettings overwrites the settings document.
func (r *PostgresSettingsRepository) SaveSettings(ctx context.Context, s model.Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings document: %w", err)
	}

	query := `INSERT INTO settings (id, doc) VALUES (1, $1)
              ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`

	_, err = r.DB.ExecContext(ctx, query, doc)
	return err
}
