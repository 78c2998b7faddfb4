package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Preset is a named simulation tuning.
type Preset struct {
	ID          string
	Name        string
	Description string
	Tuning      sim.Config
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PresetRepository provides CRUD operations for presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a new preset into the database.
func (r *PresetRepository) Create(p *Preset) error {
	tuning, err := json.Marshal(p.Tuning)
	if err != nil {
		return fmt.Errorf("encode tuning: %w", err)
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO presets (id, name, description, tuning, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(tuning), p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("preset %q: %w", p.Name, ErrConflict)
	}
	return err
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, description, tuning, created_at, updated_at
		 FROM presets WHERE id = ?`,
		id,
	))
}

// GetByName retrieves a preset by its name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, description, tuning, created_at, updated_at
		 FROM presets WHERE name = ?`,
		name,
	))
}

// List retrieves all presets ordered by name.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(
		`SELECT id, name, description, tuning, created_at, updated_at
		 FROM presets ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	return presets, rows.Err()
}

// Update modifies an existing preset.
func (r *PresetRepository) Update(p *Preset) error {
	tuning, err := json.Marshal(p.Tuning)
	if err != nil {
		return fmt.Errorf("encode tuning: %w", err)
	}

	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE presets SET name = ?, description = ?, tuning = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Description, string(tuning), p.UpdatedAt, p.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("preset %q: %w", p.Name, ErrConflict)
	}
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Delete removes a preset by its ID. A deleted active preset is no longer
// remembered.
func (r *PresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectOneRow(result); err != nil {
		return err
	}
	_, err = r.db.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, SettingActivePreset, id)
	return err
}

func (r *PresetRepository) scanOne(row *sql.Row) (*Preset, error) {
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(s scanner) (*Preset, error) {
	p := &Preset{}
	var tuning string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &tuning, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	// Start from defaults so presets saved before a field existed still
	// load with a sensible value for it.
	p.Tuning = sim.DefaultConfig()
	if err := json.Unmarshal([]byte(tuning), &p.Tuning); err != nil {
		return nil, fmt.Errorf("decode tuning of preset %s: %w", p.ID, err)
	}
	return p, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
