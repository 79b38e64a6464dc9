package decode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/slark/internal/codec"
)

func gifFile(t *testing.T, frames int) string {
	t.Helper()
	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
		img.SetColorIndex(0, 0, uint8(i%2))
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, i+1)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	return writeFile(t, "anim.gif", buf.Bytes())
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// waitClosed fails the test unless the producer closes the frame channel.
func waitClosed(t *testing.T, s *Stream) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		for range s.frames {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not exit")
	}
}

func TestStreamDeliversFramesInOrder(t *testing.T) {
	s, err := Start(gifFile(t, 5), DefaultOptions())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)

	if w, h := s.Size(); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	if s.Kind() != codec.KindGIF {
		t.Errorf("Kind() = %v, want gif", s.Kind())
	}

	var got []time.Duration
	for {
		f, ok := s.Recv()
		if !ok {
			break
		}
		got = append(got, f.Delay)
	}
	if len(got) != 5 {
		t.Fatalf("received %d frames, want 5", len(got))
	}
	for i, d := range got {
		if want := time.Duration(i+1) * 10 * time.Millisecond; d != want {
			t.Errorf("frame %d delay = %v, want %v", i, d, want)
		}
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	if _, ok := s.Recv(); ok {
		t.Error("Recv() after exhaustion returned a frame")
	}
}

func TestStartQueueSize(t *testing.T) {
	tests := []struct {
		size, want int
	}{
		{4, 4},
		{0, 0},
		{-1, DefaultQueueSize},
		{16, 16},
	}
	for _, tt := range tests {
		s, err := Start(gifFile(t, 1), Options{QueueSize: tt.size})
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if got := cap(s.frames); got != tt.want {
			t.Errorf("QueueSize %d: capacity %d, want %d", tt.size, got, tt.want)
		}
		s.Close()
		waitClosed(t, s)
	}
}

func TestStartUnsupported(t *testing.T) {
	s, err := Start(writeFile(t, "notes.txt", []byte("hi")), DefaultOptions())
	if !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if s == nil {
		t.Fatal("Start returned a nil stream")
	}
	if _, ok := s.Recv(); ok {
		t.Error("unsupported stream produced a frame")
	}
	if !errors.Is(s.Err(), codec.ErrUnsupportedFormat) {
		t.Errorf("Err() = %v, want ErrUnsupportedFormat", s.Err())
	}
	s.Close()
	s.Close()
}

func TestStartCorruptHeader(t *testing.T) {
	s, err := Start(writeFile(t, "bad.png", []byte("definitely not a png")), DefaultOptions())
	if !errors.Is(err, codec.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if _, ok := s.Recv(); ok {
		t.Error("corrupt stream produced a frame")
	}
	if w, h := s.Size(); w != 0 || h != 0 {
		t.Errorf("Size() = %dx%d, want 0x0", w, h)
	}
}

func TestStreamMidStreamCorruption(t *testing.T) {
	data, err := os.ReadFile(gifFile(t, 3))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Drop the trailer and the tail of the last frame.
	path := writeFile(t, "cut.gif", data[:len(data)-4])

	s, err := Start(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	n := 0
	for {
		if _, ok := s.Recv(); !ok {
			break
		}
		n++
	}
	if n != 2 {
		t.Errorf("received %d frames, want 2", n)
	}
	if !errors.Is(s.Err(), codec.ErrCorrupt) {
		t.Errorf("Err() = %v, want ErrCorrupt", s.Err())
	}
}

func TestStreamCloseStopsProducer(t *testing.T) {
	s, err := Start(gifFile(t, 50), Options{QueueSize: 0})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, ok := s.Recv(); !ok {
		t.Fatal("no first frame")
	}
	s.Close()

	if _, ok := s.Recv(); ok {
		t.Error("Recv() after Close returned a frame")
	}
	waitClosed(t, s)
	if err := s.Err(); err != nil {
		t.Errorf("Err() after consumer drop = %v, want nil", err)
	}
}

func TestStreamIDsAreUnique(t *testing.T) {
	a, _ := Start(writeFile(t, "a.txt", nil), DefaultOptions())
	b, _ := Start(writeFile(t, "b.txt", nil), DefaultOptions())
	if a.ID() == b.ID() {
		t.Error("two sessions share an id")
	}
}
