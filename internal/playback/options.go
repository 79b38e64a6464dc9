package playback

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/slark/internal/frame"
)

// Option configures a View during creation.
//
// Example:
//
//	v := playback.New(stream,
//		playback.WithPremultiplied(true),
//		playback.WithPainter(func(i int, f *playback.CachedFrame) { ... }))
type Option func(*options)

type options struct {
	uploader      Uploader
	painter       Painter
	premultiplied bool
}

func defaultOptions() options {
	return options{}
}

// Uploader turns a decoded frame into a renderer handle.
type Uploader interface {
	Upload(f *frame.Frame) (*gg.ImageBuf, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(f *frame.Frame) (*gg.ImageBuf, error)

// Upload calls u(f).
func (u UploaderFunc) Upload(f *frame.Frame) (*gg.ImageBuf, error) {
	return u(f)
}

// Painter is invoked for every frame a tick advances onto, in order, so that
// intermediate frames of a large elapsed interval can still be drawn.
type Painter func(index int, f *CachedFrame)

// WithUploader replaces the default copy into a gg.ImageBuf.
// A nil uploader keeps the default.
func WithUploader(u Uploader) Option {
	return func(o *options) {
		o.uploader = u
	}
}

// WithPainter sets the callback run for each advanced frame.
func WithPainter(p Painter) Option {
	return func(o *options) {
		o.painter = p
	}
}

// WithPremultiplied makes the default uploader store premultiplied alpha
// (gg.FormatRGBAPremul) instead of straight RGBA.
func WithPremultiplied(premultiplied bool) Option {
	return func(o *options) {
		o.premultiplied = premultiplied
	}
}

// CopyUploader copies frames into new image buffers, premultiplying when
// asked to.
func CopyUploader(premultiplied bool) Uploader {
	return UploaderFunc(func(f *frame.Frame) (*gg.ImageBuf, error) {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		format := gg.FormatRGBA8
		if premultiplied {
			format = gg.FormatRGBAPremul
		}
		buf, err := gg.NewImageBuf(f.Width, f.Height, format)
		if err != nil {
			return nil, err
		}

		dst := buf.Data()
		row := f.Width * 4
		for y := 0; y < f.Height; y++ {
			src := f.Pix[y*f.Stride : y*f.Stride+row]
			if premultiplied {
				src = frame.Premultiply(src)
			}
			copy(dst[y*buf.Stride():], src)
		}
		return buf, nil
	})
}
