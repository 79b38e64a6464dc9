// Package webp streams frames out of still and animated WebP files.
//
// The RIFF container is walked chunk by chunk. Every ANMF frame is rewrapped
// as a standalone still WebP and handed to a FrameDecoder, then blended onto
// a canvas of the declared size so each emitted frame is the full picture.
package webp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/gogpu/slark/internal/frame"
)

// Errors returned by the WebP reader.
var (
	// ErrHeader is returned when the RIFF header or first chunk is invalid.
	ErrHeader = errors.New("webp: invalid header")

	// ErrFormat is returned for malformed chunks or frames.
	ErrFormat = errors.New("webp: malformed chunk")
)

// Option configures a Reader.
type Option func(*Reader)

// WithFrameDecoder replaces the per-frame bitstream decoder.
func WithFrameDecoder(d FrameDecoder) Option {
	return func(r *Reader) {
		if d != nil {
			r.dec = d
		}
	}
}

// Reader decodes a WebP incrementally.
//
// Reader is not safe for concurrent use.
type Reader struct {
	r         *bufio.Reader
	remaining int64
	dec       FrameDecoder

	width, height int
	animated      bool
	loopCount     int

	// still holds the chunks of a non-animated image until Next.
	still []chunk

	canvas      *image.NRGBA
	prevRect    image.Rectangle
	prevDispose bool
	timestamp   time.Duration

	frames int
	done   bool
}

// NewReader parses the RIFF header and the first chunk of r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	d := &Reader{r: br, dec: DefaultFrameDecoder}
	for _, opt := range opts {
		opt(d)
	}

	var hdr [12]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	if string(hdr[0:4]) != fccRIFF || string(hdr[8:12]) != fccWEBP {
		return nil, fmt.Errorf("%w: not a RIFF/WEBP file", ErrHeader)
	}
	d.remaining = int64(binary.LittleEndian.Uint32(hdr[4:8])) - 4

	first, err := readChunk(br, &d.remaining)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}

	switch first.fourCC {
	case fccVP8X:
		if len(first.data) < 10 {
			return nil, fmt.Errorf("%w: short VP8X", ErrHeader)
		}
		d.animated = first.data[0]&flagAnimation != 0
		d.width = u24(first.data[4:7]) + 1
		d.height = u24(first.data[7:10]) + 1
	case fccVP8, fccVP8L:
		cfg, err := webp.DecodeConfig(bytes.NewReader(container(first)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHeader, err)
		}
		d.width, d.height = cfg.Width, cfg.Height
		d.still = []chunk{first}
	default:
		return nil, fmt.Errorf("%w: unexpected first chunk %q", ErrHeader, first.fourCC)
	}
	if d.animated {
		d.canvas = image.NewNRGBA(image.Rect(0, 0, d.width, d.height))
	}
	return d, nil
}

// Size returns the canvas size declared by the header.
func (d *Reader) Size() (width, height int) {
	return d.width, d.height
}

// Animated reports whether the file carries an animation.
func (d *Reader) Animated() bool {
	return d.animated
}

// LoopCount returns the ANIM loop count once the ANIM chunk has been read.
// Zero means infinite.
func (d *Reader) LoopCount() int {
	return d.loopCount
}

// Next returns the next full-canvas frame, or io.EOF after the last one.
func (d *Reader) Next() (*frame.Frame, error) {
	if d.done {
		return nil, io.EOF
	}
	if !d.animated {
		d.done = true
		return d.nextStill()
	}

	for {
		c, err := readChunk(d.r, &d.remaining)
		if err == io.EOF {
			d.done = true
			if d.frames == 0 {
				return nil, fmt.Errorf("%w: animation has no frames", ErrFormat)
			}
			return nil, io.EOF
		}
		if err != nil {
			d.done = true
			return nil, err
		}

		switch c.fourCC {
		case fccANIM:
			if len(c.data) >= 6 {
				d.loopCount = int(binary.LittleEndian.Uint16(c.data[4:6]))
			}
		case fccANMF:
			f, err := d.frame(c.data)
			if err != nil {
				d.done = true
				return nil, err
			}
			return f, nil
		}
	}
}

// nextStill gathers the remaining chunks and decodes them as one picture.
func (d *Reader) nextStill() (*frame.Frame, error) {
	chunks := d.still
	for {
		c, err := readChunk(d.r, &d.remaining)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	data, err := standalone(chunks, d.width, d.height)
	if err != nil {
		return nil, err
	}
	img, err := d.decode(data)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != d.width || b.Dy() != d.height {
		return nil, fmt.Errorf("%w: picture %dx%d does not match header %dx%d",
			ErrFormat, b.Dx(), b.Dy(), d.width, d.height)
	}
	return frame.FromNRGBA(img, 0)
}

func (d *Reader) frame(b []byte) (*frame.Frame, error) {
	if len(b) < 16 {
		return nil, fmt.Errorf("%w: short ANMF", ErrFormat)
	}
	x := u24(b[0:3]) * 2
	y := u24(b[3:6]) * 2
	w := u24(b[6:9]) + 1
	h := u24(b[9:12]) + 1
	duration := time.Duration(u24(b[12:15])) * time.Millisecond
	flags := b[15]

	rect := image.Rect(x, y, x+w, y+h)
	if !rect.In(d.canvas.Bounds()) {
		return nil, fmt.Errorf("%w: frame %d region %v exceeds canvas %dx%d",
			ErrFormat, d.frames, rect, d.width, d.height)
	}

	sub, err := splitChunks(b[16:])
	if err != nil {
		return nil, err
	}
	data, err := standalone(sub, w, h)
	if err != nil {
		return nil, err
	}
	img, err := d.decode(data)
	if err != nil {
		return nil, err
	}
	if ib := img.Bounds(); ib.Dx() != w || ib.Dy() != h {
		return nil, fmt.Errorf("%w: frame %d is %dx%d, ANMF declares %dx%d",
			ErrFormat, d.frames, ib.Dx(), ib.Dy(), w, h)
	}

	// Disposal of the previous frame happens before this one is drawn.
	if d.prevDispose {
		draw.Draw(d.canvas, d.prevRect, image.Transparent, image.Point{}, draw.Src)
	}
	op := draw.Over
	if flags&anmfNoBlend != 0 {
		op = draw.Src
	}
	draw.Draw(d.canvas, rect, img, image.Point{}, op)
	d.prevRect = rect
	d.prevDispose = flags&anmfDisposeBackground != 0

	// Delay is the distance between consecutive frame end timestamps.
	prev := d.timestamp
	d.timestamp += duration
	f, err := frame.FromNRGBA(d.canvas, d.timestamp-prev)
	if err != nil {
		return nil, err
	}
	d.frames++
	return f, nil
}

func (d *Reader) decode(data []byte) (*image.NRGBA, error) {
	pic, err := d.dec.DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrFormat, d.frames, err)
	}
	return pic.toNRGBA()
}
