// Package frame defines the decoded frame exchanged between format decoders,
// the decode producer and the playback engine.
//
// A Frame is an owned RGBA8 raster (row-major, 4 bytes per pixel) plus the
// time it stays on screen after becoming current. Frames are immutable once
// sent to a consumer; ownership moves with the value.
package frame

import (
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"
)

// Frame errors.
var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("frame: invalid dimensions")

	// ErrNegativeDelay is returned when a frame delay is negative.
	ErrNegativeDelay = errors.New("frame: negative delay")

	// ErrShortBuffer is returned when a pixel slice is smaller than width*height*4.
	ErrShortBuffer = errors.New("frame: pixel buffer too short")
)

// Frame is one decoded raster image plus its display duration.
type Frame struct {
	// Pix holds straight-alpha RGBA8 pixels, Stride bytes per row.
	Pix []byte

	// Width and Height are the frame dimensions in pixels.
	Width, Height int

	// Stride is the number of bytes per row. Always Width*4 for frames
	// produced by this module.
	Stride int

	// Delay is how long the frame stays current. Never negative.
	Delay time.Duration
}

// New allocates a transparent frame of the given size.
func New(width, height int, delay time.Duration) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if delay < 0 {
		return nil, ErrNegativeDelay
	}
	return &Frame{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
		Delay:  delay,
	}, nil
}

// FromNRGBA copies a canvas snapshot into a new frame. The canvas must start
// at the origin; decoders keep their logical screen there.
func FromNRGBA(canvas *image.NRGBA, delay time.Duration) (*Frame, error) {
	b := canvas.Bounds()
	f, err := New(b.Dx(), b.Dy(), delay)
	if err != nil {
		return nil, err
	}
	for y := 0; y < f.Height; y++ {
		src := canvas.Pix[canvas.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(f.Pix[y*f.Stride:(y+1)*f.Stride], src[:f.Stride])
	}
	return f, nil
}

// FromImage converts any image into a straight-alpha RGBA8 frame.
func FromImage(img image.Image, delay time.Duration) (*Frame, error) {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return FromNRGBA(nrgba, delay)
	}
	return FromNRGBA(ToNRGBA(img), delay)
}

// ToNRGBA returns img as an *image.NRGBA anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// NRGBA returns a view of the frame as an *image.NRGBA sharing Pix.
func (f *Frame) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Size returns the frame dimensions.
func (f *Frame) Size() (width, height int) {
	return f.Width, f.Height
}

// Validate reports whether the frame is internally consistent.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, f.Width, f.Height)
	}
	if f.Delay < 0 {
		return ErrNegativeDelay
	}
	if f.Stride < f.Width*4 || len(f.Pix) < f.Stride*(f.Height-1)+f.Width*4 {
		return ErrShortBuffer
	}
	return nil
}

// RGBAAt returns the straight-alpha pixel at (x, y), or zeros when out of bounds.
func (f *Frame) RGBAAt(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, 0, 0, 0
	}
	i := y*f.Stride + x*4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}
