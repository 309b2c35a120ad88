package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the most recent frame as JPEG for streaming. Each
// publish bumps a sequence number so readers can skip frames they have sent.
type FrameBuffer struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Update encodes frame as JPEG and publishes it.
func (b *FrameBuffer) Update(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return fmt.Errorf("encode frame: empty frame")
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory released by Close.
	data := append([]byte(nil), buf.GetBytes()...)
	b.Publish(data)
	return nil
}

// Publish stores an already encoded JPEG.
func (b *FrameBuffer) Publish(jpeg []byte) {
	b.mu.Lock()
	b.jpeg = jpeg
	b.seq++
	b.mu.Unlock()
}

// Latest returns the current JPEG and its sequence number. The sequence is
// zero until the first publish.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jpeg, b.seq
}
