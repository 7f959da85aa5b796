package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"inkflow/internal/database"
	"inkflow/internal/models"
)

// BoxesSettingKey is the settings key holding a user's box configuration
const BoxesSettingKey = "leitner_boxes"

// ErrSettingNotFound is returned when the user has no value for a key
var ErrSettingNotFound = errors.New("setting not found")

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key
func (r *SettingsRepository) GetSetting(ctx context.Context, userID, key string) (string, error) {
	var value string
	query := `SELECT setting_value FROM settings WHERE user_id = ? AND setting_key = ?`
	err := r.db.GetContext(ctx, &value, query, userID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, userID, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertSettingQuery(), userID, key, value)
	return err
}

// LoadBoxes returns the user's box configuration, or the default boxes when
// none is stored
func (r *SettingsRepository) LoadBoxes(ctx context.Context, userID string) (models.BoxConfiguration, error) {
	raw, err := r.GetSetting(ctx, userID, BoxesSettingKey)
	if errors.Is(err, ErrSettingNotFound) {
		return models.DefaultBoxes(), nil
	}
	if err != nil {
		return nil, err
	}

	var boxes models.BoxConfiguration
	if err := json.Unmarshal([]byte(raw), &boxes); err != nil {
		return nil, fmt.Errorf("decode box configuration: %w", err)
	}
	if len(boxes) == 0 {
		return models.DefaultBoxes(), nil
	}
	return boxes, nil
}

// SaveBoxes validates and stores the user's box configuration
func (r *SettingsRepository) SaveBoxes(ctx context.Context, userID string, boxes models.BoxConfiguration) error {
	if err := boxes.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(boxes)
	if err != nil {
		return err
	}
	return r.SetSetting(ctx, userID, BoxesSettingKey, string(raw))
}
