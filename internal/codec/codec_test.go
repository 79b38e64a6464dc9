package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"a.gif", KindGIF},
		{"dir/clip.webp", KindWebP},
		{"photo.jpg", KindJPEG},
		{"photo.jpeg", KindJPEG},
		{"icon.png", KindPNG},
		{"archive.tar.gif", KindGIF},
		{"A.GIF", KindUnknown},
		{"photo.JPG", KindUnknown},
		{"noext", KindUnknown},
		{"dir.gif/file", KindUnknown},
		{"movie.mp4", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{
		Image: []*image.Paletted{
			image.NewPaletted(image.Rect(0, 0, 3, 2), pal),
			image.NewPaletted(image.Rect(0, 0, 3, 2), pal),
		},
		Delay: []int{2, 3},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	f, err := Open(writeFile(t, "a.gif", gifBytes(t)), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	if f.Kind != KindGIF {
		t.Errorf("Kind = %v, want gif", f.Kind)
	}
	if w, h := f.Size(); w != 3 || h != 2 {
		t.Errorf("Size() = %dx%d, want 3x2", w, h)
	}
	n := 0
	for {
		_, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		n++
	}
	if n != 2 {
		t.Errorf("decoded %d frames, want 2", n)
	}
}

func TestOpenDispatchesByExtension(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	// JPEG bytes behind a .gif name are a corrupt GIF.
	if _, err := Open(writeFile(t, "wrong.gif", buf.Bytes()), Options{}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Open(jpeg as gif) err = %v, want ErrCorrupt", err)
	}

	f, err := Open(writeFile(t, "right.jpeg", buf.Bytes()), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = f.Close()
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(writeFile(t, "a.GIF", gifBytes(t)), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("upper-case extension err = %v, want ErrUnsupportedFormat", err)
	}
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"), Options{})
	if err == nil || errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrCorrupt) {
		t.Errorf("missing file err = %v, want an open error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v, want os.ErrNotExist", err)
	}
}

func TestNewReaderUnknownKind(t *testing.T) {
	if _, err := NewReader(KindUnknown, bytes.NewReader(nil), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
