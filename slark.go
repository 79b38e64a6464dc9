package slark

import (
	"github.com/google/uuid"

	"github.com/gogpu/slark/internal/codec"
	"github.com/gogpu/slark/internal/codec/webp"
	"github.com/gogpu/slark/internal/decode"
	"github.com/gogpu/slark/internal/frame"
	"github.com/gogpu/slark/internal/playback"
)

// Frame is one decoded RGBA8 raster and its display duration.
type Frame = frame.Frame

// View plays one animation from a stream of frames.
type View = playback.View

// CachedFrame is an uploaded frame held by a View.
type CachedFrame = playback.CachedFrame

// State is the playback position of a View.
type State = playback.State

// Phase is the loading state of a View.
type Phase = playback.Phase

// View phases.
const (
	PhaseEmpty     = playback.PhaseEmpty
	PhaseStreaming = playback.PhaseStreaming
	PhaseComplete  = playback.PhaseComplete
)

// Painter is called for every frame a tick advances onto.
type Painter = playback.Painter

// Uploader converts decoded frames into renderer handles.
type Uploader = playback.Uploader

// UploaderFunc adapts a function to Uploader.
type UploaderFunc = playback.UploaderFunc

// WebPFrameDecoder decodes one still WebP bitstream.
type WebPFrameDecoder = webp.FrameDecoder

// WebPFrameDecoderFunc adapts a function to WebPFrameDecoder.
type WebPFrameDecoderFunc = webp.FrameDecoderFunc

// WebPPicture is the result of a WebPFrameDecoder.
type WebPPicture = webp.Picture

// ChannelOrder is the byte order of decoded pixels.
type ChannelOrder = frame.ChannelOrder

// Channel orders.
const (
	OrderRGBA = frame.OrderRGBA
	OrderBGRA = frame.OrderBGRA
	OrderARGB = frame.OrderARGB
)

// Errors.
var (
	// ErrUnsupportedFormat is returned when the file extension is not one
	// of gif, webp, png, jpg or jpeg.
	ErrUnsupportedFormat = codec.ErrUnsupportedFormat

	// ErrCorrupt is returned for unreadable headers and reported by Err
	// when decoding stops mid-stream.
	ErrCorrupt = codec.ErrCorrupt
)

// Animation is a View bound to its decode session.
type Animation struct {
	*View

	stream *decode.Stream
}

// Open starts decoding path in the background and returns its animation.
//
// Open never returns a nil Animation. When the file cannot be decoded at all,
// the error is returned together with an Animation that has no frames, so
// callers can keep a placeholder in its place.
func Open(path string, opts ...Option) (*Animation, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	stream, err := decode.Start(path, decode.Options{
		QueueSize:        o.queueSize,
		WebPFrameDecoder: o.webpDecoder,
	})
	return &Animation{
		View:   playback.New(stream, o.playback()...),
		stream: stream,
	}, err
}

// Path returns the file path given to Open.
func (a *Animation) Path() string {
	return a.stream.Path()
}

// Format returns the decoder name chosen from the extension.
func (a *Animation) Format() string {
	return a.stream.Kind().String()
}

// HeaderSize returns the canvas size declared by the file header. It is
// known before the first frame is decoded.
func (a *Animation) HeaderSize() (width, height int) {
	return a.stream.Size()
}

// Err reports why decoding stopped early, if it did.
func (a *Animation) Err() error {
	return a.stream.Err()
}

// SessionID returns the identifier of the decode session.
func (a *Animation) SessionID() uuid.UUID {
	return a.stream.ID()
}
