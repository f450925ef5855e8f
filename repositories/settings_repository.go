package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/mkoenig/ssoportal/models"
)

// Settings option keys as stored in the settings table.
const (
	optionButtonText      = "button_text"
	optionAutoRedirect    = "auto_redirect"
	optionAutoProvision   = "auto_provision"
	optionDefaultRedirect = "default_redirect"
)

// SettingsRepository handles persistence of the admin-editable options
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, settings models.Settings) error
}

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get reads all stored options, falling back to defaults for keys that
// were never saved
func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("failed to scan setting: %w", err)
		}

		switch key {
		case optionButtonText:
			settings.ButtonText = value
		case optionAutoRedirect:
			settings.AutoRedirect = parseBool(value)
		case optionAutoProvision:
			settings.AutoProvision = parseBool(value)
		case optionDefaultRedirect:
			settings.DefaultRedirect = value
		}
	}

	if err = rows.Err(); err != nil {
		return settings, fmt.Errorf("error iterating settings: %w", err)
	}

	return settings, nil
}

// Update persists all options in one transaction
func (r *settingsRepository) Update(ctx context.Context, settings models.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`

	options := map[string]string{
		optionButtonText:      settings.ButtonText,
		optionAutoRedirect:    strconv.FormatBool(settings.AutoRedirect),
		optionAutoProvision:   strconv.FormatBool(settings.AutoProvision),
		optionDefaultRedirect: settings.DefaultRedirect,
	}

	for key, value := range options {
		if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	return nil
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
