// Package playback turns a stream of decoded frames into a cached, looping
// animation driven by an external clock.
//
// A View pulls frames lazily. Nothing is read from the source until the first
// frame is needed, and afterwards at most one frame is read per advance, so
// only the very first paint of an image waits on the decoder. Each frame
// cached stays for the life of the View.
package playback

import (
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/slark/internal/frame"
	"github.com/gogpu/slark/internal/logger"
)

// Source is the consumer end of a decode session.
type Source interface {
	// Recv blocks until a frame arrives; false means the session is over.
	Recv() (*frame.Frame, bool)

	// Close drops the consumer end.
	Close()
}

// Phase is the loading state of a View.
type Phase uint8

const (
	// PhaseEmpty is the zero View, with nothing attached.
	PhaseEmpty Phase = iota

	// PhaseStreaming means more frames may still arrive.
	PhaseStreaming

	// PhaseComplete means the frame cache is final.
	PhaseComplete
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseStreaming:
		return "streaming"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// CachedFrame is an uploaded frame and its display duration.
type CachedFrame struct {
	Image *gg.ImageBuf
	Delay time.Duration
}

// State is the playback position.
type State struct {
	// Index of the current frame in the cache.
	Index int

	// Accumulated is the time left before the next advance. It may be
	// negative between ticks' advances; the deficit is carried forward.
	Accumulated time.Duration

	// Exhausted reports that every frame has been decoded.
	Exhausted bool
}

// View plays one animation. It is not safe for concurrent use; the render
// loop owns it.
type View struct {
	src    Source
	phase  Phase
	frames []CachedFrame

	index int
	acc   time.Duration

	width, height int

	upload Uploader
	paint  Painter
}

// New creates a View reading from src. A nil src yields a complete View with
// no frames.
func New(src Source, opts ...Option) *View {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.uploader == nil {
		o.uploader = CopyUploader(o.premultiplied)
	}

	v := &View{
		src:    src,
		phase:  PhaseStreaming,
		upload: o.uploader,
		paint:  o.painter,
	}
	if src == nil {
		v.phase = PhaseComplete
	}
	return v
}

// LoadNext blocks for the next frame and appends it to the cache. It returns
// false once the source is exhausted, after which the View is complete.
func (v *View) LoadNext() bool {
	if v.phase != PhaseStreaming {
		return false
	}
	f, ok := v.src.Recv()
	if !ok {
		v.finish()
		return false
	}

	img, err := v.upload.Upload(f)
	if err != nil {
		logger.Get().Warn("playback: upload failed", "frame", len(v.frames), "error", err)
		v.src.Close()
		v.finish()
		return false
	}
	v.frames = append(v.frames, CachedFrame{Image: img, Delay: f.Delay})
	if len(v.frames) == 1 {
		// The first frame becomes current as soon as it is cached.
		v.width, v.height = f.Width, f.Height
		v.index = 0
		v.acc += f.Delay
	}
	return true
}

func (v *View) finish() {
	v.phase = PhaseComplete
}

// loadFirst pulls the first frame into an empty cache and makes it current.
func (v *View) loadFirst() bool {
	return len(v.frames) > 0 || v.LoadNext()
}

// Current returns the current frame, waiting for the first one if the cache
// is still empty.
func (v *View) Current() (*CachedFrame, bool) {
	if !v.loadFirst() {
		return nil, false
	}
	return &v.frames[v.index], true
}

// CurrentFrameHandle returns the renderer handle of the current frame
// without waiting on the decoder.
func (v *View) CurrentFrameHandle() (*gg.ImageBuf, bool) {
	if len(v.frames) == 0 {
		return nil, false
	}
	return v.frames[v.index].Image, true
}

// Tick advances playback by elapsed and returns how many frames it moved.
//
// Every frame that becomes current adds its delay to the accumulated time.
// Advancing wraps past the last cached frame and stops at the latest once
// the accumulated time is positive again or the index returns to where the
// tick started, so a loop of zero delays cannot spin.
func (v *View) Tick(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	if !v.loadFirst() {
		return 0
	}

	v.acc -= elapsed
	start := v.index
	n := 0
	for v.acc <= 0 {
		if v.phase == PhaseStreaming {
			v.LoadNext()
		}
		v.index = (v.index + 1) % len(v.frames)
		cur := &v.frames[v.index]
		v.acc += cur.Delay
		n++
		if v.paint != nil {
			v.paint(v.index, cur)
		}
		if v.index == start {
			break
		}
	}
	return n
}

// ImageSize returns the size of the first frame, once it is cached.
func (v *View) ImageSize() (width, height int, ok bool) {
	if len(v.frames) == 0 {
		return 0, 0, false
	}
	return v.width, v.height, true
}

// State returns the playback position.
func (v *View) State() State {
	return State{Index: v.index, Accumulated: v.acc, Exhausted: v.phase == PhaseComplete}
}

// Phase returns the loading state.
func (v *View) Phase() Phase {
	return v.phase
}

// Len returns the number of cached frames.
func (v *View) Len() int {
	return len(v.frames)
}

// Frame returns cached frame i.
func (v *View) Frame(i int) (*CachedFrame, bool) {
	if i < 0 || i >= len(v.frames) {
		return nil, false
	}
	return &v.frames[i], true
}

// Close drops the source. Cached frames stay playable.
func (v *View) Close() {
	if v.src != nil && v.phase == PhaseStreaming {
		v.src.Close()
	}
	if v.phase != PhaseEmpty {
		v.phase = PhaseComplete
	}
}
