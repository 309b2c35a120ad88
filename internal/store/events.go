package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/deskwatch/internal/behavior"
)

// DrinkRepository stores drinking events.
type DrinkRepository struct {
	s *Store
}

// Drinks returns the drinking event repository for this store.
func (s *Store) Drinks() *DrinkRepository {
	return &DrinkRepository{s: s}
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode capture ids: %w", err)
	}
	return string(b), nil
}

func decodeIDs(s string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("decode capture ids: %w", err)
	}
	return ids, nil
}

// Create inserts a drinking event.
func (r *DrinkRepository) Create(e *behavior.DrinkingEvent) error {
	ids, err := encodeIDs(e.CaptureIDs)
	if err != nil {
		return err
	}
	_, err = r.s.db.Exec(
		`INSERT INTO drinking_events
		 (id, day, occurred_at, object, duration_frames, duration_sec, rise_px, consistency, gesture_conf, capture_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, r.s.Day(e.Timestamp), formatTime(e.Timestamp), e.Object, e.DurationFrames,
		e.DurationSec, e.RisePx, e.Consistency, e.GestureConf, ids,
	)
	return err
}

const drinkColumns = `id, occurred_at, object, duration_frames, duration_sec, rise_px, consistency, gesture_conf, capture_ids`

func scanDrink(row interface{ Scan(...any) error }) (*behavior.DrinkingEvent, error) {
	e := &behavior.DrinkingEvent{Kind: behavior.KindDrinking}
	var ts, ids string
	if err := row.Scan(&e.ID, &ts, &e.Object, &e.DurationFrames, &e.DurationSec,
		&e.RisePx, &e.Consistency, &e.GestureConf, &ids); err != nil {
		return nil, err
	}
	var err error
	if e.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	if e.CaptureIDs, err = decodeIDs(ids); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves a drinking event.
func (r *DrinkRepository) GetByID(id string) (*behavior.DrinkingEvent, error) {
	e, err := scanDrink(r.s.db.QueryRow(`SELECT `+drinkColumns+` FROM drinking_events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListByDay returns the events of day (see Store.Day), oldest first.
func (r *DrinkRepository) ListByDay(day string) ([]*behavior.DrinkingEvent, error) {
	rows, err := r.s.db.Query(
		`SELECT `+drinkColumns+` FROM drinking_events WHERE day = ? ORDER BY occurred_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*behavior.DrinkingEvent
	for rows.Next() {
		e, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of stored drinking events.
func (r *DrinkRepository) Count() (int, error) {
	var n int
	err := r.s.db.QueryRow(`SELECT COUNT(*) FROM drinking_events`).Scan(&n)
	return n, err
}

// StudyRepository stores study sessions.
type StudyRepository struct {
	s *Store
}

// Studies returns the study session repository for this store.
func (s *Store) Studies() *StudyRepository {
	return &StudyRepository{s: s}
}

// Create inserts a study session. The session is filed under its end day.
func (r *StudyRepository) Create(e *behavior.StudyEvent) error {
	ids, err := encodeIDs(e.CaptureIDs)
	if err != nil {
		return err
	}
	_, err = r.s.db.Exec(
		`INSERT INTO study_events
		 (id, day, start_at, end_at, object, detail, duration_frames, duration_sec, capture_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, r.s.Day(e.End), formatTime(e.Start), formatTime(e.End), e.Object, e.Detail,
		e.DurationFrames, e.DurationSec, ids,
	)
	return err
}

const studyColumns = `id, start_at, end_at, object, detail, duration_frames, duration_sec, capture_ids`

func scanStudy(row interface{ Scan(...any) error }) (*behavior.StudyEvent, error) {
	e := &behavior.StudyEvent{Kind: behavior.KindStudy}
	var start, end, ids string
	if err := row.Scan(&e.ID, &start, &end, &e.Object, &e.Detail,
		&e.DurationFrames, &e.DurationSec, &ids); err != nil {
		return nil, err
	}
	var err error
	if e.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if e.End, err = parseTime(end); err != nil {
		return nil, err
	}
	if e.CaptureIDs, err = decodeIDs(ids); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves a study session.
func (r *StudyRepository) GetByID(id string) (*behavior.StudyEvent, error) {
	e, err := scanStudy(r.s.db.QueryRow(`SELECT `+studyColumns+` FROM study_events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListByDay returns the sessions that ended on day, oldest first.
func (r *StudyRepository) ListByDay(day string) ([]*behavior.StudyEvent, error) {
	rows, err := r.s.db.Query(
		`SELECT `+studyColumns+` FROM study_events WHERE day = ? ORDER BY end_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*behavior.StudyEvent
	for rows.Next() {
		e, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Save stores e in the repository matching its kind.
func (s *Store) Save(e behavior.Event) error {
	switch ev := e.(type) {
	case *behavior.DrinkingEvent:
		return s.Drinks().Create(ev)
	case *behavior.StudyEvent:
		return s.Studies().Create(ev)
	}
	return fmt.Errorf("unsupported event kind %q", e.EventKind())
}

// Capture is a saved snapshot image.
type Capture struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
}

// CaptureRepository stores snapshot records.
type CaptureRepository struct {
	s *Store
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{s: s}
}

// Create inserts a capture record.
func (r *CaptureRepository) Create(c *Capture) error {
	_, err := r.s.db.Exec(
		`INSERT INTO captures (id, day, label, path, taken_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, r.s.Day(c.TakenAt), c.Label, c.Path, formatTime(c.TakenAt),
	)
	return err
}

// GetByID retrieves a capture record.
func (r *CaptureRepository) GetByID(id string) (*Capture, error) {
	c := &Capture{}
	var taken string
	err := r.s.db.QueryRow(
		`SELECT id, label, path, taken_at FROM captures WHERE id = ?`, id,
	).Scan(&c.ID, &c.Label, &c.Path, &taken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.TakenAt, err = parseTime(taken); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByDay returns the captures taken on day, oldest first.
func (r *CaptureRepository) ListByDay(day string) ([]*Capture, error) {
	rows, err := r.s.db.Query(
		`SELECT id, label, path, taken_at FROM captures WHERE day = ? ORDER BY taken_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		var taken string
		if err := rows.Scan(&c.ID, &c.Label, &c.Path, &taken); err != nil {
			return nil, err
		}
		if c.TakenAt, err = parseTime(taken); err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	return captures, rows.Err()
}
