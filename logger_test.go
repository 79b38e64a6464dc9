package slark

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}
	Logger().Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected log output to contain 'test message', got: %s", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set nop logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestSessionLogging(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var mu sync.Mutex
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &buf}, nil)))

	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{
		Image: []*image.Paletted{image.NewPaletted(image.Rect(0, 0, 1, 1), pal)},
		Delay: []int{1},
	}
	var data bytes.Buffer
	if err := gif.EncodeAll(&data, g); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	path := filepath.Join(t.TempDir(), "one.gif")
	if err := os.WriteFile(path, data.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	anim, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for anim.LoadNext() {
	}
	anim.Close()

	mu.Lock()
	out := buf.String()
	mu.Unlock()
	for _, want := range []string{"decode: started", "decode: fully decoded", anim.SessionID().String()} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("message", "key", "value")
	}
}
