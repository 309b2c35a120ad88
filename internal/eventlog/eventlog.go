// Package eventlog appends behavior events to daily CSV files
// (water_log_YYYY-MM-DD.csv and study_log_YYYY-MM-DD.csv).
package eventlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/deskwatch/internal/behavior"
)

// TimeLayout is the timestamp format written to the logs.
const TimeLayout = "2006-01-02 15:04:05"

// Action column values.
const (
	ActionDrinking = "water_drinking"
	ActionStudy    = "study_session"
)

var (
	drinkingHeader = []string{"timestamp", "action", "object", "duration_frames", "duration_sec",
		"rise_px", "consistency", "gesture_conf", "capture_ids"}
	studyHeader = []string{"timestamp", "action", "object", "duration_frames", "duration_sec",
		"start", "detail", "capture_ids"}
)

// Writer appends events to per-day CSV files in a directory.
type Writer struct {
	mu  sync.Mutex
	dir string
	loc *time.Location
}

// New creates a Writer rooted at dir, creating it if needed.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &Writer{dir: dir, loc: time.Local}, nil
}

// SetLocation changes the time zone used for file names and timestamps.
func (w *Writer) SetLocation(loc *time.Location) {
	w.mu.Lock()
	w.loc = loc
	w.mu.Unlock()
}

// Dir returns the log directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the file that events of kind occurring at t are appended to.
func (w *Writer) Path(kind behavior.Kind, t time.Time) string {
	prefix := "water_log"
	if kind == behavior.KindStudy {
		prefix = "study_log"
	}
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", prefix, t.In(w.loc).Format("2006-01-02")))
}

// Append writes e as one row, adding the header when the file is new.
func (w *Writer) Append(e behavior.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var header, row []string
	switch ev := e.(type) {
	case *behavior.DrinkingEvent:
		header = drinkingHeader
		row = []string{
			ev.Timestamp.In(w.loc).Format(TimeLayout),
			ActionDrinking,
			ev.Object,
			strconv.Itoa(ev.DurationFrames),
			formatFloat(ev.DurationSec, 1),
			formatFloat(ev.RisePx, 1),
			formatFloat(ev.Consistency, 2),
			formatFloat(ev.GestureConf, 2),
			strings.Join(ev.CaptureIDs, ";"),
		}
	case *behavior.StudyEvent:
		header = studyHeader
		row = []string{
			ev.End.In(w.loc).Format(TimeLayout),
			ActionStudy,
			ev.Object,
			strconv.Itoa(ev.DurationFrames),
			formatFloat(ev.DurationSec, 1),
			ev.Start.In(w.loc).Format(TimeLayout),
			ev.Detail,
			strings.Join(ev.CaptureIDs, ";"),
		}
	default:
		return fmt.Errorf("unsupported event kind %q", e.EventKind())
	}

	path := w.Path(e.EventKind(), e.OccurredAt())
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if isNew {
		if err := cw.Write(header); err != nil {
			f.Close()
			return err
		}
	}
	if err := cw.Write(row); err != nil {
		f.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadAll returns every row of the log file for kind on day, header first.
// A missing file yields no rows and no error.
func (w *Writer) ReadAll(kind behavior.Kind, day time.Time) ([][]string, error) {
	f, err := os.Open(w.Path(kind, day))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
