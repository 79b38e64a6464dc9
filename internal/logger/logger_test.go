package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler); !ok {
		t.Error("nopHandler.WithAttrs() did not return nopHandler")
	}
	if _, ok := h.WithGroup("group").(nopHandler); !ok {
		t.Error("nopHandler.WithGroup() did not return nopHandler")
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	orig := Get()
	t.Cleanup(func() { Set(orig) })

	Set(slog.Default())
	Set(nil)
	if Get() == nil {
		t.Fatal("Get() returned nil")
	}
	if Get().Enabled(context.Background(), slog.LevelError) {
		t.Error("Set(nil) left an enabled logger")
	}
}

func TestConcurrentAccess(t *testing.T) {
	orig := Get()
	t.Cleanup(func() { Set(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Get().Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			Set(slog.Default())
			Set(nil)
		}()
	}
	wg.Wait()
}
