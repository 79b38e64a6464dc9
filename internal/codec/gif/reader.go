// Package gif streams composited frames out of a GIF file.
//
// Blocks are parsed one at a time so that a truncated or corrupt file still
// yields every frame before the damage. Each image block is decoded by
// image/gif from a synthesized single-frame stream and drawn onto a
// persistent logical screen; the reader emits the whole screen, never the raw
// delta.
package gif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/slark/internal/frame"
)

// Errors returned by the GIF reader.
var (
	// ErrHeader is returned when the signature or logical screen descriptor is invalid.
	ErrHeader = errors.New("gif: invalid header")

	// ErrFormat is returned when a block cannot be parsed.
	ErrFormat = errors.New("gif: malformed block")
)

// DelayUnit is the GIF delay tick (1/100 s).
const DelayUnit = 10 * time.Millisecond

// Block introducers and extension labels.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	eGraphicControl = 0xF9
	eApplication    = 0xFF
)

// Disposal methods (graphic control extension bits 2-4).
const (
	disposalUnspecified = 0
	disposalNone        = 1
	disposalBackground  = 2
	disposalPrevious    = 3
)

type graphicControl struct {
	disposal    byte
	delay       uint16
	transparent bool
	index       byte
}

// Reader decodes a GIF incrementally.
//
// Reader is not safe for concurrent use.
type Reader struct {
	r *bufio.Reader

	width, height int

	// prefix is "GIF89a", the logical screen descriptor and the global
	// color table, replayed in front of every synthesized frame.
	prefix []byte

	screen *image.NRGBA
	saved  *image.NRGBA
	gc     graphicControl

	loopCount int
	frames    int
	done      bool
}

// NewReader reads the GIF header and logical screen descriptor from r.
func NewReader(r io.Reader) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var hdr [13]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	sig := string(hdr[:6])
	if sig != "GIF87a" && sig != "GIF89a" {
		return nil, fmt.Errorf("%w: signature %q", ErrHeader, sig)
	}
	width := int(hdr[6]) | int(hdr[7])<<8
	height := int(hdr[8]) | int(hdr[9])<<8
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty logical screen %dx%d", ErrHeader, width, height)
	}

	prefix := make([]byte, 0, 13+768)
	prefix = append(prefix, "GIF89a"...)
	prefix = append(prefix, hdr[6:]...)
	if packed := hdr[10]; packed&0x80 != 0 {
		table := make([]byte, 3*(1<<((packed&0x07)+1)))
		if _, err := io.ReadFull(br, table); err != nil {
			return nil, fmt.Errorf("%w: global color table: %w", ErrHeader, err)
		}
		prefix = append(prefix, table...)
	}

	bounds := image.Rect(0, 0, width, height)
	return &Reader{
		r:         br,
		width:     width,
		height:    height,
		prefix:    prefix,
		screen:    image.NewNRGBA(bounds),
		saved:     image.NewNRGBA(bounds),
		loopCount: -1,
	}, nil
}

// Size returns the logical screen size.
func (d *Reader) Size() (width, height int) {
	return d.width, d.height
}

// LoopCount returns the NETSCAPE2.0 loop count seen so far, or -1 when the
// animation carries none.
func (d *Reader) LoopCount() int {
	return d.loopCount
}

// Next returns the logical screen after compositing the next image block.
// It returns io.EOF after the trailer.
func (d *Reader) Next() (*frame.Frame, error) {
	for !d.done {
		b, err := d.r.ReadByte()
		if err != nil {
			d.done = true
			if err == io.EOF && d.frames > 0 {
				// Missing trailer: everything before it decoded fine.
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
		switch b {
		case sExtension:
			if err := d.readExtension(); err != nil {
				d.done = true
				return nil, err
			}
		case sImageDescriptor:
			f, err := d.readFrame()
			if err != nil {
				d.done = true
				return nil, err
			}
			return f, nil
		case sTrailer:
			d.done = true
		default:
			d.done = true
			return nil, fmt.Errorf("%w: unknown block introducer 0x%02x", ErrFormat, b)
		}
	}
	return nil, io.EOF
}

func (d *Reader) readExtension() error {
	label, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: extension label: %w", ErrFormat, err)
	}
	blocks, err := d.readSubBlocks(nil)
	if err != nil {
		return err
	}
	switch label {
	case eGraphicControl:
		// blocks holds the raw length-prefixed data: 0x04 packed delay(2) index 0x00.
		if len(blocks) < 6 || blocks[0] != 4 {
			return fmt.Errorf("%w: graphic control extension", ErrFormat)
		}
		packed := blocks[1]
		d.gc = graphicControl{
			disposal:    (packed >> 2) & 0x07,
			delay:       uint16(blocks[2]) | uint16(blocks[3])<<8,
			transparent: packed&0x01 != 0,
			index:       blocks[4],
		}
	case eApplication:
		// NETSCAPE2.0 / ANIMEXTS1.0: 0x0B "NETSCAPE2.0" 0x03 0x01 lo hi 0x00.
		if len(blocks) >= 17 && blocks[0] == 11 && blocks[12] == 3 && blocks[13] == 1 {
			id := string(blocks[1:12])
			if id == "NETSCAPE2.0" || id == "ANIMEXTS1.0" {
				d.loopCount = int(blocks[14]) | int(blocks[15])<<8
			}
		}
	}
	return nil
}

// readSubBlocks appends the raw length-prefixed sub-blocks, including the
// zero terminator, to dst.
func (d *Reader) readSubBlocks(dst []byte) ([]byte, error) {
	for {
		n, err := d.r.ReadByte()
		if err != nil {
			return dst, fmt.Errorf("%w: sub-block: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
		dst = append(dst, n)
		if n == 0 {
			return dst, nil
		}
		start := len(dst)
		dst = append(dst, make([]byte, n)...)
		if _, err := io.ReadFull(d.r, dst[start:]); err != nil {
			return dst, fmt.Errorf("%w: sub-block: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
	}
}

func (d *Reader) readFrame() (*frame.Frame, error) {
	var desc [9]byte
	if _, err := io.ReadFull(d.r, desc[:]); err != nil {
		return nil, fmt.Errorf("%w: image descriptor: %w", ErrFormat, io.ErrUnexpectedEOF)
	}

	var buf bytes.Buffer
	buf.Write(d.prefixCovering(desc))
	if d.gc.transparent {
		buf.Write([]byte{sExtension, eGraphicControl, 4, 0x01, 0, 0, d.gc.index, 0})
	}
	buf.WriteByte(sImageDescriptor)
	buf.Write(desc[:])

	if packed := desc[8]; packed&0x80 != 0 {
		table := make([]byte, 3*(1<<((packed&0x07)+1)))
		if _, err := io.ReadFull(d.r, table); err != nil {
			return nil, fmt.Errorf("%w: local color table: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
		buf.Write(table)
	}
	litWidth, err := d.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: LZW code size: %w", ErrFormat, io.ErrUnexpectedEOF)
	}
	buf.WriteByte(litWidth)
	data, err := d.readSubBlocks(nil)
	if err != nil {
		return nil, err
	}
	buf.Write(data)
	buf.WriteByte(sTrailer)

	img, err := gif.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrFormat, d.frames, err)
	}
	return d.composite(img)
}

// prefixCovering returns the stream prefix with the logical screen widened to
// contain the image described by desc. image/gif rejects images that overhang
// the screen; composite clips them back to it.
func (d *Reader) prefixCovering(desc [9]byte) []byte {
	right := (int(desc[0]) | int(desc[1])<<8) + (int(desc[4]) | int(desc[5])<<8)
	bottom := (int(desc[2]) | int(desc[3])<<8) + (int(desc[6]) | int(desc[7])<<8)
	if right <= d.width && bottom <= d.height {
		return d.prefix
	}
	p := bytes.Clone(d.prefix)
	w, h := min(max(right, d.width), 0xffff), min(max(bottom, d.height), 0xffff)
	p[6], p[7] = byte(w), byte(w>>8)
	p[8], p[9] = byte(h), byte(h>>8)
	return p
}

func (d *Reader) composite(img image.Image) (*frame.Frame, error) {
	gc := d.gc
	d.gc = graphicControl{}
	bounds := img.Bounds().Intersect(d.screen.Bounds())

	if gc.disposal == disposalPrevious {
		copy(d.saved.Pix, d.screen.Pix)
	}
	draw.Draw(d.screen, bounds, img, bounds.Min, draw.Over)

	f, err := frame.FromNRGBA(d.screen, time.Duration(gc.delay)*DelayUnit)
	if err != nil {
		return nil, err
	}
	d.frames++

	switch gc.disposal {
	case disposalBackground:
		draw.Draw(d.screen, bounds, image.Transparent, image.Point{}, draw.Src)
	case disposalPrevious:
		copy(d.screen.Pix, d.saved.Pix)
	}
	return f, nil
}
