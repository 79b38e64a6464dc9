package slark

import (
	"github.com/gogpu/slark/internal/decode"
	"github.com/gogpu/slark/internal/playback"
)

// Option configures Open.
//
// Example:
//
//	anim, err := slark.Open("clip.webp",
//		slark.WithQueueSize(8),
//		slark.WithPremultiplied(true))
type Option func(*options)

// options holds optional configuration for Open.
type options struct {
	queueSize     int
	premultiplied bool
	painter       Painter
	uploader      Uploader
	webpDecoder   WebPFrameDecoder
}

// defaultOptions returns the default open options.
func defaultOptions() options {
	return options{
		queueSize: decode.DefaultQueueSize,
	}
}

// WithQueueSize sets how many decoded frames may wait in the hand-off
// channel. Zero makes the decoder wait for the consumer on every frame;
// negative values restore the default of 4.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// WithPremultiplied stores cached frames with premultiplied alpha.
func WithPremultiplied(premultiplied bool) Option {
	return func(o *options) {
		o.premultiplied = premultiplied
	}
}

// WithPainter registers a callback run for every frame Tick advances onto.
func WithPainter(p Painter) Option {
	return func(o *options) {
		o.painter = p
	}
}

// WithUploader replaces the default copy of frames into gg image buffers.
func WithUploader(u Uploader) Option {
	return func(o *options) {
		o.uploader = u
	}
}

// WithWebPFrameDecoder replaces the WebP bitstream decoder, for example with
// a native codec that returns BGRA pixels.
func WithWebPFrameDecoder(d WebPFrameDecoder) Option {
	return func(o *options) {
		o.webpDecoder = d
	}
}

func (o options) playback() []playback.Option {
	opts := []playback.Option{playback.WithPremultiplied(o.premultiplied)}
	if o.painter != nil {
		opts = append(opts, playback.WithPainter(o.painter))
	}
	if o.uploader != nil {
		opts = append(opts, playback.WithUploader(o.uploader))
	}
	return opts
}
