// Package apng streams frames out of PNG and animated PNG files.
//
// Chunks are walked one at a time. Every APNG frame (an fcTL followed by
// IDAT or fdAT data) is rewrapped as a standalone PNG and decoded by
// image/png, which applies PLTE and tRNS for every color type, including the
// transparency key of truecolor and grayscale images. Frames are then placed
// at their offsets on the full canvas honoring dispose and blend operations.
package apng

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/slark/internal/frame"
	"github.com/gogpu/slark/internal/logger"
)

// Errors returned by the PNG reader.
var (
	// ErrHeader is returned when the signature or IHDR is invalid.
	ErrHeader = errors.New("apng: invalid header")

	// ErrFormat is returned for structurally invalid chunks or frames.
	ErrFormat = errors.New("apng: malformed chunk")

	// ErrChecksum is returned when a chunk CRC does not match.
	ErrChecksum = errors.New("apng: checksum mismatch")
)

// DefaultDelayDenominator replaces a zero fcTL delay denominator.
const DefaultDelayDenominator = 100

// fcTL dispose_op values.
const (
	disposeNone       = 0
	disposeBackground = 1
	disposePrevious   = 2
)

// fcTL blend_op values.
const (
	blendSource = 0
	blendOver   = 1
)

type frameControl struct {
	width, height int
	x, y          int
	delayNum      uint16
	delayDen      uint16
	dispose       byte
	blend         byte
}

// Delay converts an fcTL delay fraction (seconds) to a duration.
func Delay(num, den uint16) time.Duration {
	d := uint64(den)
	if d == 0 {
		d = DefaultDelayDenominator
	}
	return time.Duration(uint64(num) * uint64(time.Second) / d)
}

func parseFrameControl(b []byte) (frameControl, error) {
	if len(b) != 26 {
		return frameControl{}, fmt.Errorf("%w: fcTL length %d", ErrFormat, len(b))
	}
	fc := frameControl{
		width:    int(binary.BigEndian.Uint32(b[4:8])),
		height:   int(binary.BigEndian.Uint32(b[8:12])),
		x:        int(binary.BigEndian.Uint32(b[12:16])),
		y:        int(binary.BigEndian.Uint32(b[16:20])),
		delayNum: binary.BigEndian.Uint16(b[20:22]),
		delayDen: binary.BigEndian.Uint16(b[22:24]),
		dispose:  b[24],
		blend:    b[25],
	}
	if fc.width <= 0 || fc.height <= 0 {
		return frameControl{}, fmt.Errorf("%w: fcTL size %dx%d", ErrFormat, fc.width, fc.height)
	}
	if fc.dispose > disposePrevious || fc.blend > blendOver {
		return frameControl{}, fmt.Errorf("%w: fcTL dispose %d blend %d", ErrFormat, fc.dispose, fc.blend)
	}
	return fc, nil
}

// Reader decodes a PNG or APNG incrementally.
//
// Reader is not safe for concurrent use.
type Reader struct {
	r *bufio.Reader

	ihdr          []byte
	width, height int

	// palette holds PLTE and tRNS, replayed into every synthesized frame.
	palette []chunk

	animated    bool
	frameCount  int
	sawData     bool
	skipDefault bool

	pending *frameControl
	data    [][]byte

	canvas *image.NRGBA
	saved  *image.NRGBA
	frames int
	done   bool
}

// NewReader checks the PNG signature and reads IHDR from r.
func NewReader(r io.Reader) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var sig [8]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil || string(sig[:]) != pngSignature {
		return nil, fmt.Errorf("%w: not a PNG file", ErrHeader)
	}
	c, err := readChunk(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	if c.typ != "IHDR" || len(c.data) != 13 {
		return nil, fmt.Errorf("%w: first chunk is %s", ErrHeader, c.typ)
	}
	width := int(binary.BigEndian.Uint32(c.data[0:4]))
	height := int(binary.BigEndian.Uint32(c.data[4:8]))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrHeader, width, height)
	}

	bounds := image.Rect(0, 0, width, height)
	return &Reader{
		r:      br,
		ihdr:   c.data,
		width:  width,
		height: height,
		canvas: image.NewNRGBA(bounds),
		saved:  image.NewNRGBA(bounds),
	}, nil
}

// Size returns the declared canvas size from IHDR.
func (d *Reader) Size() (width, height int) {
	return d.width, d.height
}

// Animated reports whether an acTL chunk has been seen.
func (d *Reader) Animated() bool {
	return d.animated
}

// Next returns the canvas after compositing the next frame, or io.EOF once
// IEND has been reached.
func (d *Reader) Next() (*frame.Frame, error) {
	for !d.done {
		c, err := readChunk(d.r)
		if err != nil {
			d.done = true
			return nil, err
		}

		switch c.typ {
		case "PLTE", "tRNS":
			if !d.sawData {
				d.palette = append(d.palette, c)
			}
		case "acTL":
			if len(c.data) != 8 {
				d.done = true
				return nil, fmt.Errorf("%w: acTL length %d", ErrFormat, len(c.data))
			}
			d.animated = true
			d.frameCount = int(binary.BigEndian.Uint32(c.data[0:4]))
		case "fcTL":
			fc, err := parseFrameControl(c.data)
			if err != nil {
				d.done = true
				return nil, err
			}
			f, err := d.flush()
			d.pending = &fc
			if err != nil {
				d.done = true
				return nil, err
			}
			if f != nil {
				return f, nil
			}
		case "IDAT":
			if !d.sawData {
				d.sawData = true
				switch {
				case !d.animated:
					d.pending = &frameControl{width: d.width, height: d.height}
				case d.pending == nil:
					// The default image is not part of the animation.
					d.skipDefault = true
				}
			}
			if !d.skipDefault {
				d.data = append(d.data, c.data)
			}
		case "fdAT":
			if len(c.data) < 4 || d.pending == nil {
				d.done = true
				return nil, fmt.Errorf("%w: fdAT without frame control", ErrFormat)
			}
			d.skipDefault = false
			d.data = append(d.data, c.data[4:])
		case "IEND":
			d.done = true
			f, err := d.flush()
			if err != nil {
				return nil, err
			}
			if f != nil {
				return f, nil
			}
		}
	}
	return nil, io.EOF
}

// flush decodes and composites the pending frame, if any data was collected.
func (d *Reader) flush() (*frame.Frame, error) {
	fc := d.pending
	data := d.data
	d.pending, d.data = nil, nil
	if fc == nil {
		return nil, nil
	}
	if len(data) == 0 {
		if d.skipDefault {
			d.skipDefault = false
			return nil, nil
		}
		return nil, fmt.Errorf("%w: frame %d has no image data", ErrFormat, d.frames)
	}

	// Reject the region before image/png allocates a buffer of that size.
	rect := image.Rect(fc.x, fc.y, fc.x+fc.width, fc.y+fc.height)
	if !rect.In(d.canvas.Bounds()) {
		return nil, fmt.Errorf("%w: frame %d region %v exceeds canvas %dx%d",
			ErrFormat, d.frames, rect, d.width, d.height)
	}

	img, err := d.decode(fc, data)
	if err != nil {
		return nil, err
	}
	return d.composite(fc, rect, img)
}

// decode rebuilds a standalone PNG for one frame and decodes it.
func (d *Reader) decode(fc *frameControl, data [][]byte) (image.Image, error) {
	var buf bytes.Buffer
	buf.WriteString(pngSignature)

	ihdr := make([]byte, len(d.ihdr))
	copy(ihdr, d.ihdr)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(fc.width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(fc.height))
	writeChunk(&buf, "IHDR", ihdr)

	for _, c := range d.palette {
		writeChunk(&buf, c.typ, c.data)
	}
	writeChunk(&buf, "IDAT", bytes.Join(data, nil))
	writeChunk(&buf, "IEND", nil)

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrFormat, d.frames, err)
	}
	return img, nil
}

func (d *Reader) composite(fc *frameControl, rect image.Rectangle, img image.Image) (*frame.Frame, error) {
	if fc.x != 0 || fc.y != 0 {
		logger.Get().Debug("apng: frame offset", "frame", d.frames, "x", fc.x, "y", fc.y)
	}

	dispose := fc.dispose
	if d.frames == 0 && dispose == disposePrevious {
		dispose = disposeBackground
	}
	if dispose == disposePrevious {
		copy(d.saved.Pix, d.canvas.Pix)
	}

	op := draw.Src
	if fc.blend == blendOver {
		op = draw.Over
	}
	draw.Draw(d.canvas, rect, img, img.Bounds().Min, op)

	f, err := frame.FromNRGBA(d.canvas, Delay(fc.delayNum, fc.delayDen))
	if err != nil {
		return nil, err
	}
	d.frames++

	switch dispose {
	case disposeBackground:
		draw.Draw(d.canvas, rect, image.Transparent, image.Point{}, draw.Src)
	case disposePrevious:
		copy(d.canvas.Pix, d.saved.Pix)
	}
	return f, nil
}
