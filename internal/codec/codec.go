// Package codec selects a frame decoder for a file and opens it.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/slark/internal/codec/apng"
	"github.com/gogpu/slark/internal/codec/gif"
	"github.com/gogpu/slark/internal/codec/jpeg"
	"github.com/gogpu/slark/internal/codec/webp"
	"github.com/gogpu/slark/internal/frame"
)

// Codec errors.
var (
	// ErrUnsupportedFormat is returned when a file extension names no known decoder.
	ErrUnsupportedFormat = errors.New("codec: unsupported format")

	// ErrCorrupt wraps header and mid-stream decode failures.
	ErrCorrupt = errors.New("codec: corrupt image")
)

// Kind identifies a decoder.
type Kind uint8

const (
	// KindUnknown means no decoder handles the file.
	KindUnknown Kind = iota
	KindGIF
	KindWebP
	KindJPEG
	KindPNG
)

// String returns the lower-case format name.
func (k Kind) String() string {
	switch k {
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	default:
		return "unknown"
	}
}

// KindOf maps a path to a decoder by its extension. Matching is
// case-sensitive: "a.GIF" is unsupported.
func KindOf(path string) Kind {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "gif":
		return KindGIF
	case "webp":
		return KindWebP
	case "jpg", "jpeg":
		return KindJPEG
	case "png":
		return KindPNG
	default:
		return KindUnknown
	}
}

// Reader is the contract shared by every format decoder.
type Reader interface {
	// Size returns the logical canvas size declared by the header.
	Size() (width, height int)

	// Next returns the next composited frame, or io.EOF after the last.
	Next() (*frame.Frame, error)
}

// Options tune decoder construction.
type Options struct {
	// WebPFrameDecoder overrides the per-frame WebP bitstream decoder.
	WebPFrameDecoder webp.FrameDecoder
}

// NewReader builds the decoder for kind over r and parses its header.
func NewReader(kind Kind, r io.Reader, opts Options) (Reader, error) {
	switch kind {
	case KindGIF:
		return gif.NewReader(r)
	case KindWebP:
		return webp.NewReader(r, webp.WithFrameDecoder(opts.WebPFrameDecoder))
	case KindJPEG:
		return jpeg.NewReader(r)
	case KindPNG:
		return apng.NewReader(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// File is an open file plus the decoder reading it.
type File struct {
	Reader
	Kind Kind

	f *os.File
}

// Open resolves the decoder from the extension of path, opens the file and
// parses the header.
func Open(path string, opts Options) (*File, error) {
	kind := KindOf(path)
	if kind == KindUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("codec: open file: %w", err)
	}
	r, err := NewReader(kind, f, opts)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s header: %w", ErrCorrupt, kind, err)
	}
	return &File{Reader: r, Kind: kind, f: f}, nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
