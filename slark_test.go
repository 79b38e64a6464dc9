package slark

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

	"github.com/gogpu/gg"
)

// writeGIF writes a w x h animation with one solid frame per delay, given in
// hundredths of a second.
func writeGIF(t *testing.T, w, h int, delays ...int) string {
	t.Helper()
	pal := color.Palette{
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
	}
	g := &gif.GIF{}
	for i, d := range delays {
		img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
		for j := range img.Pix {
			img.Pix[j] = uint8(i % len(pal))
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, d)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpenGIF(t *testing.T) {
	path := writeGIF(t, 4, 3, 10, 20, 30)

	anim, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer anim.Close()

	if got := anim.Format(); got != "gif" {
		t.Errorf("Format() = %q, want gif", got)
	}
	if w, h := anim.HeaderSize(); w != 4 || h != 3 {
		t.Errorf("HeaderSize() = %dx%d, want 4x3", w, h)
	}
	if anim.Path() != path {
		t.Errorf("Path() = %q, want %q", anim.Path(), path)
	}
	if anim.Phase() != PhaseStreaming {
		t.Errorf("Phase() = %v, want %v", anim.Phase(), PhaseStreaming)
	}

	// 100ms on the first frame, then 200ms on the second.
	if n := anim.Tick(150 * time.Millisecond); n != 1 {
		t.Errorf("Tick(150ms) advanced %d frames, want 1", n)
	}
	st := anim.State()
	if st.Index != 1 || st.Accumulated != 150*time.Millisecond {
		t.Errorf("State() = %+v, want index 1 with 150ms accumulated", st)
	}
	if w, h, ok := anim.ImageSize(); !ok || w != 4 || h != 3 {
		t.Errorf("ImageSize() = %d, %d, %v", w, h, ok)
	}

	for anim.LoadNext() {
	}
	if anim.Len() != 3 {
		t.Errorf("Len() = %d, want 3", anim.Len())
	}
	if anim.Phase() != PhaseComplete {
		t.Errorf("Phase() = %v, want %v", anim.Phase(), PhaseComplete)
	}
	if err := anim.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	cur, ok := anim.Current()
	if !ok {
		t.Fatal("Current() returned false")
	}
	r, g, _, _ := cur.Image.GetRGBA(0, 0)
	if r != 0 || g != 255 {
		t.Errorf("second frame pixel = (%d, %d), want green", r, g)
	}
}

func TestOpenUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	anim, err := Open(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Open error = %v, want ErrUnsupportedFormat", err)
	}
	if anim == nil {
		t.Fatal("Open returned a nil Animation")
	}
	if anim.Tick(time.Second) != 0 {
		t.Error("Tick on an empty animation advanced")
	}
	if _, ok := anim.Current(); ok {
		t.Error("Current() on an empty animation returned a frame")
	}
	if anim.Phase() != PhaseComplete {
		t.Errorf("Phase() = %v, want %v", anim.Phase(), PhaseComplete)
	}
	if !errors.Is(anim.Err(), ErrUnsupportedFormat) {
		t.Errorf("Err() = %v", anim.Err())
	}
}

func TestOpenCorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gif")
	if err := os.WriteFile(path, []byte("GIF00"), 0o600); err != nil {
		t.Fatal(err)
	}

	anim, err := Open(path)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Open error = %v, want ErrCorrupt", err)
	}
	if anim.LoadNext() {
		t.Error("LoadNext on a corrupt file returned a frame")
	}
}

func TestOpenOptions(t *testing.T) {
	path := writeGIF(t, 2, 2, 1, 1)

	var painted []int
	uploads := 0
	anim, err := Open(path,
		WithQueueSize(0),
		WithPainter(func(i int, _ *CachedFrame) { painted = append(painted, i) }),
		WithUploader(UploaderFunc(func(f *Frame) (*gg.ImageBuf, error) {
			uploads++
			return gg.NewImageBuf(f.Width, f.Height, gg.FormatRGBA8)
		})),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer anim.Close()

	anim.Tick(15 * time.Millisecond)
	if uploads != 2 {
		t.Errorf("uploads = %d, want 2", uploads)
	}
	if len(painted) != 1 || painted[0] != 1 {
		t.Errorf("painted = %v, want [1]", painted)
	}
}

func TestSessionIDsDiffer(t *testing.T) {
	path := writeGIF(t, 1, 1, 1)
	a, _ := Open(path)
	b, _ := Open(path)
	defer a.Close()
	defer b.Close()
	if a.SessionID() == b.SessionID() {
		t.Error("two sessions share an id")
	}
}
