package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Alia5/capsule/input"
)

// RawLogger records the key event stream of each device: what was read from
// the physical keyboard and what was written to its virtual twin.
type RawLogger interface {
	Log(in bool, device string, ev input.Event)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw creates a new RawLogger. If w is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// Log emits one line per event. in=true marks an event read from the
// physical device (R), in=false one written to the virtual device (W).
func (r *rawLogger) Log(in bool, device string, ev input.Event) {
	if r.w == nil {
		return
	}
	dir := "W"
	if in {
		dir = "R"
	}
	line := fmt.Sprintf("%s %s [%s] %s\n", r.now().Format("2006/01/02 15:04:05.000"), dir, device, ev)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
