package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// AnyKind matches every event kind in a hook binding.
const AnyKind = "*"

// Hook binds an event kind to a plugin that runs whenever such an event is
// emitted.
type Hook struct {
	ID         string
	EventKind  string
	PluginName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// HookRepository provides CRUD operations for hooks.
type HookRepository struct {
	s *Store
}

// Hooks returns the hook repository for this store.
func (s *Store) Hooks() *HookRepository {
	return &HookRepository{s: s}
}

const hookColumns = `id, event_kind, plugin_name, config, enabled, created_at`

func scanHook(row interface{ Scan(...any) error }) (*Hook, error) {
	h := &Hook{}
	var config, created string
	var enabled int
	if err := row.Scan(&h.ID, &h.EventKind, &h.PluginName, &config, &enabled, &created); err != nil {
		return nil, err
	}
	var err error
	if h.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	h.Config = json.RawMessage(config)
	h.Enabled = enabled != 0
	return h, nil
}

func hookConfig(h *Hook) string {
	if len(h.Config) == 0 {
		return "{}"
	}
	return string(h.Config)
}

// Create inserts a new hook. CreatedAt is set to the current time.
func (r *HookRepository) Create(h *Hook) error {
	h.CreatedAt = time.Now().UTC()
	_, err := r.s.db.Exec(
		`INSERT INTO hooks (`+hookColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.EventKind, h.PluginName, hookConfig(h), h.Enabled, formatTime(h.CreatedAt),
	)
	return err
}

// GetByID retrieves a hook by its ID.
func (r *HookRepository) GetByID(id string) (*Hook, error) {
	h, err := scanHook(r.s.db.QueryRow(`SELECT `+hookColumns+` FROM hooks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return h, err
}

func (r *HookRepository) query(q string, args ...any) ([]*Hook, error) {
	rows, err := r.s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []*Hook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}
	return hooks, rows.Err()
}

// List retrieves all hooks, newest first.
func (r *HookRepository) List() ([]*Hook, error) {
	return r.query(`SELECT ` + hookColumns + ` FROM hooks ORDER BY created_at DESC`)
}

// ForKind returns the enabled hooks bound to kind or to AnyKind, oldest first.
func (r *HookRepository) ForKind(kind string) ([]*Hook, error) {
	return r.query(
		`SELECT `+hookColumns+` FROM hooks
		 WHERE enabled = 1 AND (event_kind = ? OR event_kind = ?)
		 ORDER BY created_at`,
		kind, AnyKind,
	)
}

// Update updates an existing hook.
func (r *HookRepository) Update(h *Hook) error {
	result, err := r.s.db.Exec(
		`UPDATE hooks SET event_kind = ?, plugin_name = ?, config = ?, enabled = ? WHERE id = ?`,
		h.EventKind, h.PluginName, hookConfig(h), h.Enabled, h.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a hook by its ID.
func (r *HookRepository) Delete(id string) error {
	result, err := r.s.db.Exec(`DELETE FROM hooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
