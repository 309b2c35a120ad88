package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Confirmed drinking events
		`CREATE TABLE IF NOT EXISTS drinking_events (
			id TEXT PRIMARY KEY,
			day TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			object TEXT NOT NULL,
			duration_frames INTEGER NOT NULL,
			duration_sec REAL NOT NULL,
			rise_px REAL NOT NULL,
			consistency REAL NOT NULL,
			gesture_conf REAL NOT NULL,
			capture_ids TEXT NOT NULL DEFAULT '[]'
		)`,

		// Finished study sessions
		`CREATE TABLE IF NOT EXISTS study_events (
			id TEXT PRIMARY KEY,
			day TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			object TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			duration_frames INTEGER NOT NULL,
			duration_sec REAL NOT NULL,
			capture_ids TEXT NOT NULL DEFAULT '[]'
		)`,

		// Saved snapshot images
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			day TEXT NOT NULL,
			label TEXT NOT NULL,
			path TEXT NOT NULL,
			taken_at TEXT NOT NULL
		)`,

		// Plugin hooks run for emitted events
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			event_kind TEXT NOT NULL CHECK(event_kind IN ('drinking', 'study', '*')),
			plugin_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,

		// Application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_drinking_events_day ON drinking_events(day)`,
		`CREATE INDEX IF NOT EXISTS idx_study_events_day ON study_events(day)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_day ON captures(day)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_event_kind ON hooks(event_kind)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
