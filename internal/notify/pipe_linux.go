//go:build linux

// Package notify provides a self-pipe: a file descriptor that becomes
// readable when signalled from any goroutine, so wakeups can be multiplexed
// with device reads in a single poll.
package notify

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Pipe is a non-blocking self-pipe.
type Pipe struct {
	r, w   int
	mu     sync.Mutex
	closed bool
}

// New creates the pipe.
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("create notification pipe: %w", err)
	}
	return &Pipe{r: fds[0], w: fds[1]}, nil
}

// Fd returns the read end.
func (p *Pipe) Fd() int { return p.r }

// Signal makes the read end readable. A full pipe already is, so EAGAIN is
// ignored. Signalling a closed pipe is a no-op.
func (p *Pipe) Signal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	_, _ = unix.Write(p.w, []byte{1})
}

// Drain consumes every pending signal.
func (p *Pipe) Drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(p.r, buf[:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if n <= 0 || err != nil {
			return
		}
	}
}

// Close closes both ends.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(unix.Close(p.w), unix.Close(p.r))
}
