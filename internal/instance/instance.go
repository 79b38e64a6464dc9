// Package instance keeps a single primary slark process per user.
//
// The first process listens on a unix socket. Later invocations forward their
// file arguments to it, one path per line, and exit.
package instance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/gogpu/slark/internal/logger"
)

// ErrNoPrimary is returned by Forward when no primary instance is listening.
var ErrNoPrimary = errors.New("instance: no primary instance")

// Forward sends paths to the primary instance listening on socket.
func Forward(socket string, paths ...string) error {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("%w: %s", ErrNoPrimary, socket)
		}
		return fmt.Errorf("instance: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	w := bufio.NewWriter(conn)
	for _, p := range paths {
		if strings.ContainsAny(p, "\r\n") {
			return fmt.Errorf("instance: path %q contains a line break", p)
		}
		if _, err := w.WriteString(p + "\n"); err != nil {
			return fmt.Errorf("instance: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("instance: write: %w", err)
	}
	return nil
}

// Listener is the primary side of the socket.
type Listener struct {
	ln     net.Listener
	socket string
	once   sync.Once
}

// Listen claims the primary role on socket. A stale socket file left by a
// dead primary is replaced.
func Listen(socket string) (*Listener, error) {
	ln, err := net.Listen("unix", socket)
	if err != nil && errors.Is(err, syscall.EADDRINUSE) {
		if ferr := Forward(socket); !errors.Is(ferr, ErrNoPrimary) {
			return nil, fmt.Errorf("instance: listen: %w", err)
		}
		_ = os.Remove(socket)
		ln, err = net.Listen("unix", socket)
	}
	if err != nil {
		return nil, fmt.Errorf("instance: listen: %w", err)
	}
	return &Listener{ln: ln, socket: socket}, nil
}

// Addr returns the socket path.
func (l *Listener) Addr() string {
	return l.socket
}

// Serve accepts connections until ctx is done or the listener is closed and
// calls handle with every non-empty line received. handle runs on connection
// goroutines and must be safe for concurrent use.
func (l *Listener) Serve(ctx context.Context, handle func(path string)) error {
	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("instance: accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { _ = conn.Close() }()
			sc := bufio.NewScanner(conn)
			for sc.Scan() {
				if p := strings.TrimSpace(sc.Text()); p != "" {
					handle(p)
				}
			}
			if err := sc.Err(); err != nil {
				logger.Get().Warn("instance: read request", "error", err)
			}
		}()
	}
}

// Close stops listening and removes the socket file.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		err = l.ln.Close()
	})
	return err
}
