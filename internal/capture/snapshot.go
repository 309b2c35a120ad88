package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
)

// SnapshotWriter saves frames as JPEG files in a directory.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter creates the directory if needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &SnapshotWriter{dir: dir}, nil
}

// Dir returns the output directory.
func (w *SnapshotWriter) Dir() string {
	return w.dir
}

// SnapshotName builds "<label>_<YYYYmmdd_HHMMSS>_<id prefix>.jpg".
func SnapshotName(label, id string, t time.Time) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s.jpg", label, t.Format("20060102_150405"), short)
}

// Save writes frame and returns the file name relative to Dir.
func (w *SnapshotWriter) Save(frame *gocv.Mat, label, id string, t time.Time) (string, error) {
	if frame == nil || frame.Empty() {
		return "", fmt.Errorf("save snapshot %s: empty frame", id)
	}
	name := SnapshotName(label, id, t)
	if ok := gocv.IMWrite(filepath.Join(w.dir, name), *frame); !ok {
		return "", fmt.Errorf("save snapshot %s: write failed", name)
	}
	return name, nil
}
