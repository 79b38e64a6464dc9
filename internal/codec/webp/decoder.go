package webp

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/webp"

	"github.com/gogpu/slark/internal/frame"
)

// Picture is one decoded frame bitstream.
type Picture struct {
	// Pix holds 4-byte pixels in Order, Stride bytes per row.
	Pix    []byte
	Width  int
	Height int
	Stride int
	Order  frame.ChannelOrder
}

// FrameDecoder decodes a standalone still WebP into pixels.
type FrameDecoder interface {
	DecodeFrame(data []byte) (Picture, error)
}

// FrameDecoderFunc adapts a function to FrameDecoder.
type FrameDecoderFunc func(data []byte) (Picture, error)

// DecodeFrame calls f(data).
func (f FrameDecoderFunc) DecodeFrame(data []byte) (Picture, error) {
	return f(data)
}

// DefaultFrameDecoder decodes with golang.org/x/image/webp and always returns
// straight-alpha RGBA.
var DefaultFrameDecoder FrameDecoder = FrameDecoderFunc(decodeFrame)

func decodeFrame(data []byte) (Picture, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return Picture{}, err
	}
	nrgba := frame.ToNRGBA(img)
	b := nrgba.Bounds()
	return Picture{
		Pix:    nrgba.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: nrgba.Stride,
		Order:  frame.OrderRGBA,
	}, nil
}

// toNRGBA repacks a picture into RGBA order. Pix is reused when it is
// already tightly packed.
func (p Picture) toNRGBA() (*image.NRGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: picture size %dx%d", ErrFormat, p.Width, p.Height)
	}
	row := p.Width * 4
	if p.Stride < row || len(p.Pix) < p.Stride*(p.Height-1)+row {
		return nil, fmt.Errorf("%w: picture buffer too short", ErrFormat)
	}

	pix := p.Pix
	if p.Stride != row {
		pix = make([]byte, row*p.Height)
		for y := 0; y < p.Height; y++ {
			copy(pix[y*row:(y+1)*row], p.Pix[y*p.Stride:])
		}
	} else {
		pix = pix[:row*p.Height]
	}
	if err := frame.Normalize(pix, p.Order); err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: pix, Stride: row, Rect: image.Rect(0, 0, p.Width, p.Height)}, nil
}
