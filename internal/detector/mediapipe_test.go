package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("jpeg-bytes")

	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame() error = %v", err)
	}

	out := buf.Bytes()
	if got := binary.BigEndian.Uint32(out[:4]); got != uint32(len(payload)) {
		t.Errorf("length prefix = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(out[4:], payload) {
		t.Errorf("payload = %q, want %q", out[4:], payload)
	}
}

func TestReadHands(t *testing.T) {
	t.Run("parses one hand", func(t *testing.T) {
		line := `{"hands":[{"handedness":"Left","score":0.8,"points":[{"x":0.1,"y":0.2,"z":0},{"x":0.3,"y":0.4,"z":0}]}]}` + "\n"
		hands, err := readHands(bufio.NewReader(strings.NewReader(line)))
		if err != nil {
			t.Fatalf("readHands() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" {
			t.Errorf("handedness = %s, want Left", hands[0].Handedness)
		}
		if hands[0].Points[ThumbCMC].Y != 0.4 {
			t.Errorf("point 1 Y = %f, want 0.4", hands[0].Points[ThumbCMC].Y)
		}
		if hands[0].Points[PinkyTip] != (Point3D{}) {
			t.Errorf("missing points should stay zero, got %+v", hands[0].Points[PinkyTip])
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := readHands(bufio.NewReader(strings.NewReader(`{"hands":[]}` + "\n")))
		if err != nil {
			t.Fatalf("readHands() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := readHands(bufio.NewReader(strings.NewReader("nope\n"))); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("closed stream", func(t *testing.T) {
		if _, err := readHands(bufio.NewReader(strings.NewReader(""))); err == nil {
			t.Error("expected read error")
		}
	})
}
