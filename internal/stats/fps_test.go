package stats

import (
	"testing"
	"time"
)

func TestFPSEmpty(t *testing.T) {
	var s FPS
	if s.Average() != 0 || s.Count() != 0 {
		t.Errorf("empty FPS = %d over %d", s.Average(), s.Count())
	}
	s.Add(0)
	if s.Average() != 0 {
		t.Errorf("Average with zero intervals = %d, want 0", s.Average())
	}
}

func TestFPSAverage(t *testing.T) {
	var s FPS
	s.Add(10 * time.Millisecond)
	s.Add(30 * time.Millisecond)
	if got := s.Average(); got != 50 {
		t.Errorf("Average() = %d, want 50", got)
	}
}

func TestFPSWindowWraps(t *testing.T) {
	var s FPS
	for range Window {
		s.Add(100 * time.Millisecond)
	}
	if s.Count() != Window || s.Average() != 10 {
		t.Fatalf("full window: %d fps over %d", s.Average(), s.Count())
	}
	for range Window {
		s.Add(20 * time.Millisecond)
	}
	if s.Count() != Window {
		t.Errorf("Count() = %d, want %d", s.Count(), Window)
	}
	if got := s.Average(); got != 50 {
		t.Errorf("Average() after wrap = %d, want 50", got)
	}
}
