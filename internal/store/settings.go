package store

import (
	"database/sql"
	"errors"
)

// Setting keys.
const (
	SettingActivePreset = "active_preset"
)

// SettingsRepository reads and writes key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// ActivePreset returns the preset remembered for the next start.
func (s *Store) ActivePreset() (*Preset, error) {
	id, err := s.Settings().Get(SettingActivePreset)
	if err != nil {
		return nil, err
	}
	return s.Presets().GetByID(id)
}

// SetActivePreset remembers the preset to apply on the next start.
func (s *Store) SetActivePreset(id string) error {
	if _, err := s.Presets().GetByID(id); err != nil {
		return err
	}
	return s.Settings().Set(SettingActivePreset, id)
}
