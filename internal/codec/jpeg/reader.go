// Package jpeg yields a JPEG file as a single still frame.
package jpeg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/gogpu/slark/internal/frame"
)

// ErrHeader is returned when the JPEG header cannot be parsed.
var ErrHeader = errors.New("jpeg: invalid header")

// Reader yields exactly one frame with zero delay.
type Reader struct {
	// header holds the bytes consumed while parsing the header; the image
	// is decoded from header followed by the rest of r.
	header        bytes.Buffer
	r             io.Reader
	width, height int
	done          bool
}

// NewReader parses the JPEG header only. The entropy-coded data is read by
// Next. Baseline and progressive files are both accepted.
func NewReader(r io.Reader) (*Reader, error) {
	d := &Reader{r: bufio.NewReader(r)}
	cfg, err := jpeg.DecodeConfig(io.TeeReader(d.r, &d.header))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	d.width, d.height = cfg.Width, cfg.Height
	return d, nil
}

// Size returns the image size from the SOF marker.
func (d *Reader) Size() (width, height int) {
	return d.width, d.height
}

// Next decodes the image on the first call and returns io.EOF afterwards.
func (d *Reader) Next() (*frame.Frame, error) {
	if d.done {
		return nil, io.EOF
	}
	d.done = true

	img, err := jpeg.Decode(io.MultiReader(&d.header, d.r))
	d.header = bytes.Buffer{}
	if err != nil {
		return nil, fmt.Errorf("jpeg: decode: %w", err)
	}
	return frame.FromImage(img, 0)
}
