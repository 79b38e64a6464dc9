// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark"
)

// Renderable is what a layer needs from an animation.
type Renderable interface {
	// ImageSize returns the frame size once the first frame is cached.
	ImageSize() (width, height int, ok bool)

	// Tick advances playback and returns the number of frames advanced.
	Tick(elapsed time.Duration) int

	// Current returns the current frame, waiting for the first one.
	Current() (*slark.CachedFrame, bool)
}

// headerSizer is implemented by sources that know their size before the
// first frame arrives.
type headerSizer interface {
	HeaderSize() (width, height int)
}

type closer interface {
	Close()
}

// PlaceholderSize is the side of the box drawn for a layer with no frames.
const PlaceholderSize = 128

// Layer is one image on the canvas.
type Layer struct {
	ID     int
	Path   string
	Origin gg.Point
	Zoom   Zoom

	// Err is why the image could not be decoded, if it could not.
	Err error

	src Renderable
}

// Source returns the animation drawn by the layer.
func (l *Layer) Source() Renderable {
	return l.src
}

// Size returns the unscaled layer size. Before the first frame it falls back
// to the header size, then to the placeholder size.
func (l *Layer) Size() (width, height int) {
	if l.src != nil {
		if w, h, ok := l.src.ImageSize(); ok {
			return w, h
		}
		if hs, ok := l.src.(headerSizer); ok {
			if w, h := hs.HeaderSize(); w > 0 && h > 0 {
				return w, h
			}
		}
	}
	return PlaceholderSize, PlaceholderSize
}

// EffectiveSize returns the layer size after zoom.
func (l *Layer) EffectiveSize() (width, height float64) {
	w, h := l.Size()
	s := l.Zoom.Scale()
	return float64(w) * s, float64(h) * s
}

// Contains reports whether p falls inside the zoomed layer bounds.
func (l *Layer) Contains(p gg.Point) bool {
	w, h := l.EffectiveSize()
	return p.X >= l.Origin.X && p.Y >= l.Origin.Y &&
		p.X < l.Origin.X+w && p.Y < l.Origin.Y+h
}

func (l *Layer) paint(dc *gg.Context) {
	s := l.Zoom.Scale()
	var cur *slark.CachedFrame
	if l.src != nil {
		cur, _ = l.src.Current()
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate(l.Origin.X, l.Origin.Y)
	dc.Scale(s, s)

	if cur != nil && cur.Image != nil {
		dc.DrawImage(cur.Image, 0, 0)
		return
	}
	w, h := l.Size()
	paintPlaceholder(dc, w, h)
}

// paintPlaceholder draws a crossed box marking an image that failed to load.
func paintPlaceholder(dc *gg.Context, width, height int) {
	w, h := float64(width), float64(height)
	dc.SetRGBA(0.5, 0.5, 0.5, 0.35)
	dc.DrawRectangle(0, 0, w, h)
	_ = dc.Fill()

	dc.SetRGBA(0.85, 0.2, 0.2, 1)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, w-2, h-2)
	_ = dc.Stroke()
	dc.DrawLine(0, 0, w, h)
	dc.DrawLine(w, 0, 0, h)
	_ = dc.Stroke()
}
