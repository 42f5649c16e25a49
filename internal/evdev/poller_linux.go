//go:build linux

package evdev

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/Alia5/capsule/internal/engine"
)

// Poller waits on descriptors with poll(2).
type Poller struct {
	pfds []unix.PollFd
}

func (p *Poller) Wait(fds []int) ([]engine.Readiness, error) {
	p.pfds = p.pfds[:0]
	for _, fd := range fds {
		p.pfds = append(p.pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	for {
		_, err := unix.Poll(p.pfds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	out := make([]engine.Readiness, len(fds))
	for i, pfd := range p.pfds {
		// Buffered events are still delivered after a hangup; read them first.
		if pfd.Revents&unix.POLLIN != 0 {
			out[i] |= engine.Readable
		} else if pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			out[i] |= engine.Failed
		}
	}
	return out, nil
}
