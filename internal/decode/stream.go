// Package decode runs one background decode session per image and hands the
// frames to a consumer through a bounded channel.
//
// The producer goroutine owns the file and the decoder state. It blocks when
// the channel is full and stops silently once the consumer closes the stream.
package decode

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/slark/internal/codec"
	"github.com/gogpu/slark/internal/codec/webp"
	"github.com/gogpu/slark/internal/frame"
	"github.com/gogpu/slark/internal/logger"
)

// DefaultQueueSize is the hand-off channel capacity used by DefaultOptions.
const DefaultQueueSize = 4

// Options configures a decode session.
type Options struct {
	// QueueSize is the channel capacity. Zero makes every send a rendezvous
	// with the consumer; negative values select DefaultQueueSize.
	QueueSize int

	// WebPFrameDecoder overrides the WebP bitstream decoder.
	WebPFrameDecoder webp.FrameDecoder
}

// DefaultOptions returns Options with the default queue size.
func DefaultOptions() Options {
	return Options{QueueSize: DefaultQueueSize}
}

// Stream is the consumer end of a decode session.
type Stream struct {
	id     uuid.UUID
	path   string
	kind   codec.Kind
	width  int
	height int

	frames chan *frame.Frame
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// Start opens path and begins decoding it on a new goroutine.
//
// Start always returns a usable Stream. When the format is unsupported or the
// header cannot be read, the error is returned alongside a Stream that is
// already exhausted, so the image behaves as a zero-frame animation.
func Start(path string, opts Options) (*Stream, error) {
	s := &Stream{
		id:   uuid.New(),
		path: path,
		kind: codec.KindOf(path),
		done: make(chan struct{}),
	}
	log := logger.Get().With("session", s.id.String(), "file", filepath.Base(path))

	file, err := codec.Open(path, codec.Options{WebPFrameDecoder: opts.WebPFrameDecoder})
	if err != nil {
		log.Warn("decode: cannot start", "error", err)
		s.frames = make(chan *frame.Frame)
		close(s.frames)
		s.err = err
		return s, err
	}

	size := opts.QueueSize
	if size < 0 {
		size = DefaultQueueSize
	}
	s.frames = make(chan *frame.Frame, size)
	s.width, s.height = file.Size()

	log.Info("decode: started", "format", file.Kind.String(), "width", s.width, "height", s.height)
	go s.run(file, log)
	return s, nil
}

func (s *Stream) run(file *codec.File, log *slog.Logger) {
	defer close(s.frames)
	defer func() { _ = file.Close() }()

	start := time.Now()
	n := 0
	for {
		select {
		case <-s.done:
			log.Debug("decode: consumer dropped", "frames", n)
			return
		default:
		}

		f, err := file.Next()
		if errors.Is(err, io.EOF) {
			log.Info("decode: fully decoded", "frames", n, "elapsed", time.Since(start))
			return
		}
		if err != nil {
			s.setErr(fmt.Errorf("%w: %w", codec.ErrCorrupt, err))
			log.Warn("decode: stream ended early", "frames", n, "error", err)
			return
		}

		select {
		case s.frames <- f:
			n++
		case <-s.done:
			log.Debug("decode: consumer dropped", "frames", n)
			return
		}
	}
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Recv blocks until the next frame arrives. It returns false once the
// session has finished or the stream was closed.
func (s *Stream) Recv() (*frame.Frame, bool) {
	select {
	case <-s.done:
		return nil, false
	default:
	}
	f, ok := <-s.frames
	return f, ok
}

// Close drops the consumer end. The producer notices on its next send and
// exits without reporting an error. Close is idempotent.
func (s *Stream) Close() {
	s.once.Do(func() { close(s.done) })
}

// Err returns the error that ended the session early, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Size returns the canvas size declared by the file header, or zeros when
// the session never started.
func (s *Stream) Size() (width, height int) {
	return s.width, s.height
}

// ID returns the session identifier used in log records.
func (s *Stream) ID() uuid.UUID {
	return s.id
}

// Kind returns the decoder selected for the file.
func (s *Stream) Kind() codec.Kind {
	return s.kind
}

// Path returns the file path passed to Start.
func (s *Stream) Path() string {
	return s.path
}
