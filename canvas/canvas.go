// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark"
	"github.com/gogpu/slark/internal/logger"
	"github.com/gogpu/slark/project"
)

// Common errors returned by Canvas operations.
var (
	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("canvas: invalid dimensions")

	// ErrUnknownLayer is returned for an id that names no layer.
	ErrUnknownLayer = errors.New("canvas: unknown layer")
)

// Opener opens an image file as a Renderable. It may return a usable
// Renderable together with an error.
type Opener func(path string) (Renderable, error)

// Option configures a Canvas.
type Option func(*Canvas)

// WithBackground sets the color the canvas is cleared to before painting.
func WithBackground(c gg.RGBA) Option {
	return func(cv *Canvas) {
		cv.background = c
	}
}

// WithOpener replaces how Add opens files.
func WithOpener(o Opener) Option {
	return func(cv *Canvas) {
		if o != nil {
			cv.open = o
		}
	}
}

// WithOpenOptions passes options to slark.Open for every added file.
func WithOpenOptions(opts ...slark.Option) Option {
	return func(cv *Canvas) {
		cv.open = func(path string) (Renderable, error) {
			return slark.Open(path, opts...)
		}
	}
}

// Canvas is a stack of animated layers.
//
// The stacking order, origins and zoom knobs live in the canvas project:
// layer ids are project image ids and every arrangement change goes through
// it, so Project always describes what is on screen.
//
// Canvas is NOT safe for concurrent use.
type Canvas struct {
	width, height int
	background    gg.RGBA

	layers map[int]*Layer
	global int

	proj *project.Project
	open Opener
}

// New creates an empty canvas.
func New(width, height int, opts ...Option) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	c := &Canvas{
		width:      width,
		height:     height,
		background: gg.RGBA{A: 1},
		layers:     make(map[int]*Layer),
		proj:       project.New(),
		open: func(path string) (Renderable, error) {
			return slark.Open(path)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromProject creates a canvas showing every image of p, restoring origins,
// zoom knobs and stacking order. The canvas keeps p up to date from then on.
func FromProject(p *project.Project, width, height int, opts ...Option) (*Canvas, error) {
	c, err := New(width, height, opts...)
	if err != nil {
		return nil, err
	}
	c.proj = p
	for _, id := range p.Layers() {
		img, _ := p.Image(id)
		src, err := c.open(img.Path)
		if err != nil {
			logger.Get().Warn("canvas: image unavailable", "path", img.Path, "error", err)
		}
		c.insert(&Layer{
			ID:     id,
			Path:   img.Path,
			Origin: gg.Pt(img.Origin.X, img.Origin.Y),
			Zoom:   Zoom{Knob: img.Zoom},
			Err:    err,
			src:    src,
		})
	}
	return c, nil
}

// Project returns the arrangement shown by the canvas.
func (c *Canvas) Project() *project.Project {
	return c.proj
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.height
}

// Add opens path and puts it on top of the stack. A file that cannot be
// decoded still gets a layer, drawn as a placeholder.
func (c *Canvas) Add(path string) *Layer {
	src, err := c.open(path)
	if err != nil {
		logger.Get().Warn("canvas: image unavailable", "path", path, "error", err)
	}
	return c.AddRenderable(path, src, err)
}

// AddRenderable puts an already open source on top of the stack.
func (c *Canvas) AddRenderable(path string, src Renderable, err error) *Layer {
	l := &Layer{
		ID:   c.proj.Add(path),
		Path: path,
		Err:  err,
		src:  src,
	}
	c.insert(l)
	return l
}

func (c *Canvas) insert(l *Layer) {
	l.Zoom.Global = c.global
	c.layers[l.ID] = l
}

// Layer returns the layer with the given id.
func (c *Canvas) Layer(id int) (*Layer, bool) {
	l, ok := c.layers[id]
	return l, ok
}

// Layers returns the layers from bottom to top.
func (c *Canvas) Layers() []*Layer {
	order := c.proj.Layers()
	out := make([]*Layer, 0, len(order))
	for _, id := range order {
		out = append(out, c.layers[id])
	}
	return out
}

// Remove drops a layer and closes its source.
func (c *Canvas) Remove(id int) error {
	l, ok := c.layers[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownLayer, id)
	}
	if cl, ok := l.src.(closer); ok {
		cl.Close()
	}
	delete(c.layers, id)
	c.proj.Remove(id)
	return nil
}

// SetOrigin moves a layer.
func (c *Canvas) SetOrigin(id int, origin gg.Point) error {
	l, ok := c.layers[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownLayer, id)
	}
	c.moveTo(l, origin)
	return nil
}

func (c *Canvas) moveTo(l *Layer, origin gg.Point) {
	l.Origin = origin
	c.proj.SetOrigin(l.ID, project.Point{X: origin.X, Y: origin.Y})
}

// ShiftLayer moves a layer delta places up (positive) or down the stack,
// clamped to the ends. It reports whether the order changed.
func (c *Canvas) ShiftLayer(id, delta int) bool {
	before := slices.Index(c.proj.Layers(), id)
	if before < 0 {
		return false
	}
	c.proj.ShiftLayer(id, delta)
	return slices.Index(c.proj.Layers(), id) != before
}

// TurnKnob zooms one layer by delta steps.
func (c *Canvas) TurnKnob(id, delta int) bool {
	l, ok := c.layers[id]
	if !ok {
		return false
	}
	if !l.Zoom.Turn(delta) {
		return false
	}
	c.proj.SetZoom(id, l.Zoom.Knob)
	return true
}

// TurnGlobalKnob zooms every layer by delta fine steps.
func (c *Canvas) TurnGlobalKnob(delta int) {
	c.global += delta
	for _, l := range c.layers {
		l.Zoom.TurnGlobal(delta)
	}
}

// Tileize lays the layers out left to right in stacking order, each starting
// where the previous one ends.
func (c *Canvas) Tileize() {
	x := 0.0
	for _, id := range c.proj.Layers() {
		l := c.layers[id]
		c.moveTo(l, gg.Pt(x, 0))
		w, _ := l.EffectiveSize()
		x += w
	}
}

// HitTest returns the topmost layer containing p.
func (c *Canvas) HitTest(p gg.Point) (*Layer, bool) {
	order := c.proj.Layers()
	for i := len(order) - 1; i >= 0; i-- {
		if l := c.layers[order[i]]; l.Contains(p) {
			return l, true
		}
	}
	return nil, false
}

// Tick advances every layer by elapsed and returns the total number of
// frames advanced.
func (c *Canvas) Tick(elapsed time.Duration) int {
	n := 0
	for _, id := range c.proj.Layers() {
		if src := c.layers[id].src; src != nil {
			n += src.Tick(elapsed)
		}
	}
	return n
}

// Paint clears dc and draws every layer bottom to top.
func (c *Canvas) Paint(dc *gg.Context) {
	dc.ClearWithColor(c.background)
	for _, id := range c.proj.Layers() {
		c.layers[id].paint(dc)
	}
}

// Advance ticks every layer and repaints. It returns the number of frames
// advanced.
func (c *Canvas) Advance(dc *gg.Context, elapsed time.Duration) int {
	n := c.Tick(elapsed)
	c.Paint(dc)
	return n
}

// Close closes every layer source.
func (c *Canvas) Close() {
	for _, l := range c.layers {
		if cl, ok := l.src.(closer); ok {
			cl.Close()
		}
	}
}
