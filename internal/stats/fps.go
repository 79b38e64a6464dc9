// Package stats keeps a rolling frame-rate average for the render loop.
package stats

import "time"

// Window is the number of frame times averaged.
const Window = 288

// FPS averages the last Window frame intervals. The zero value is ready to use.
type FPS struct {
	times [Window]time.Duration
	next  int
	full  bool
}

// Add records the interval between two rendered frames.
func (s *FPS) Add(interval time.Duration) {
	s.times[s.next] = interval
	s.next++
	if s.next == Window {
		s.next = 0
		s.full = true
	}
}

// Count returns how many intervals contribute to the average.
func (s *FPS) Count() int {
	if s.full {
		return Window
	}
	return s.next
}

// Average returns the mean frame rate in whole frames per second, or zero
// before any non-zero interval has been recorded.
func (s *FPS) Average() int {
	n := s.Count()
	if n == 0 {
		return 0
	}
	var total time.Duration
	for _, t := range s.times[:n] {
		total += t
	}
	avg := total / time.Duration(n)
	if avg <= 0 {
		return 0
	}
	return int(time.Second / avg)
}
