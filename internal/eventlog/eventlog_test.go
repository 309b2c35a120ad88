package eventlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/deskwatch/internal/behavior"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := New(filepath.Join(t.TempDir(), "logs"))
	require.NoError(t, err)
	w.SetLocation(time.UTC)
	return w
}

func TestPath(t *testing.T) {
	w := newTestWriter(t)
	ts := time.Date(2025, 12, 4, 20, 44, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join(w.Dir(), "water_log_2025-12-04.csv"), w.Path(behavior.KindDrinking, ts))
	assert.Equal(t, filepath.Join(w.Dir(), "study_log_2025-12-04.csv"), w.Path(behavior.KindStudy, ts))
}

func TestAppendDrinking(t *testing.T) {
	w := newTestWriter(t)
	ts := time.Date(2025, 12, 4, 20, 44, 5, 0, time.UTC)

	for _, id := range []string{"a", "b"} {
		require.NoError(t, w.Append(&behavior.DrinkingEvent{
			ID:             id,
			Timestamp:      ts,
			Object:         "Cup",
			DurationFrames: 20,
			DurationSec:    0.7,
			RisePx:         61,
			Consistency:    0.9,
			GestureConf:    0.85,
			CaptureIDs:     []string{"c1"},
		}))
	}

	rows, err := w.ReadAll(behavior.KindDrinking, ts)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two rows")
	assert.Equal(t, drinkingHeader, rows[0])
	assert.Equal(t, []string{"2025-12-04 20:44:05", ActionDrinking, "Cup", "20", "0.7", "61.0", "0.90", "0.85", "c1"}, rows[1])
}

func TestAppendStudy(t *testing.T) {
	w := newTestWriter(t)
	start := time.Date(2025, 12, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)

	require.NoError(t, w.Append(&behavior.StudyEvent{
		Start:          start,
		End:            end,
		Object:         "Book",
		Detail:         "book",
		DurationFrames: 18000,
		DurationSec:    600,
		CaptureIDs:     []string{"s1", "s2"},
	}))

	rows, err := w.ReadAll(behavior.KindStudy, end)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, studyHeader, rows[0])
	assert.Equal(t, []string{"2025-12-04 09:10:00", ActionStudy, "Book", "18000", "600.0", "2025-12-04 09:00:00", "book", "s1;s2"}, rows[1])
}

func TestAppendSplitsByDay(t *testing.T) {
	w := newTestWriter(t)
	day1 := time.Date(2025, 12, 4, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	require.NoError(t, w.Append(&behavior.DrinkingEvent{Timestamp: day1, Object: "Cup"}))
	require.NoError(t, w.Append(&behavior.DrinkingEvent{Timestamp: day2, Object: "Bottle"}))

	rows1, err := w.ReadAll(behavior.KindDrinking, day1)
	require.NoError(t, err)
	rows2, err := w.ReadAll(behavior.KindDrinking, day2)
	require.NoError(t, err)
	assert.Len(t, rows1, 2)
	assert.Len(t, rows2, 2)
}

func TestReadAllMissingFile(t *testing.T) {
	w := newTestWriter(t)
	rows, err := w.ReadAll(behavior.KindStudy, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
